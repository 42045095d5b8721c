package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Read or replace experiment notes",
}

var notesGetCmd = &cobra.Command{
	Use:   "get <experiment>",
	Short: "Print the notes of an experiment, one per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesGet,
}

var notesSetCmd = &cobra.Command{
	Use:   "set <experiment> [note...]",
	Short: "Replace the notes of an experiment",
	Long: `Replace the notes of an experiment. Each argument becomes one note; with
--stdin, each input line does. No notes clears them.

Examples:
  mexp notes set 2019-09-04T10-12-01-004512 "baseline" "lr=0.1" -p mnist
  git log -1 --format=%B | mexp notes set 2019-09-04T10-12-01-004512 --stdin -p mnist`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNotesSet,
}

var notesFromStdin bool

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesGetCmd)
	notesCmd.AddCommand(notesSetCmd)
	notesSetCmd.Flags().BoolVar(&notesFromStdin, "stdin", false, "read notes from standard input")
}

func runNotesGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, metrics, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics(ctx, metrics)

	if err := selectOnly(session, args[0]); err != nil {
		return err
	}
	_, notes, err := session.EditNotes(ctx)
	if err != nil {
		return err
	}
	for _, note := range notes {
		fmt.Fprintln(cmd.OutOrStdout(), note)
	}
	return nil
}

func runNotesSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, metrics, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics(ctx, metrics)

	notes := append([]string{}, args[1:]...)
	if notesFromStdin {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			notes = append(notes, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read notes: %w", err)
		}
		for len(notes) > 0 && strings.TrimSpace(notes[len(notes)-1]) == "" {
			notes = notes[:len(notes)-1]
		}
	}

	if err := selectOnly(session, args[0]); err != nil {
		return err
	}
	if err := session.SaveNotes(ctx, args[0], notes); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d note(s) for %s\n", len(notes), args[0])
	return nil
}
