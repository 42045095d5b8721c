package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs <experiment>",
	Short: "Print the log of an experiment",
	Long: `Print the lines an experiment logged. Lines written as
"LEVEL:logger:message" are shown in columns.

Examples:
  mexp logs 2019-09-04T10-12-01-004512 -p mnist
  mexp logs 2019-09-04T10-12-01-004512 -p mnist --level ERROR`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

var logsLevel string

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "only show entries with this level")
}

func runLogs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, metrics, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics(ctx, metrics)

	entries, err := session.Logs(ctx, args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	shown := 0
	for _, entry := range entries {
		if logsLevel != "" && entry.Level != logsLevel {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Level, entry.Logger, entry.Message)
		shown++
	}
	_ = tw.Flush()
	if shown == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No logs found")
	}
	return nil
}
