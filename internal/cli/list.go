package cli

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the experiment table",
	Long: `Load every experiment of a project and print the reconciled table.

Experiments that fail to load keep their placeholder cells and are reported
on stderr, and the command exits non-zero after printing the table.

Examples:
  mexp list -p mnist`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, metrics, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics(ctx, metrics)

	if err := session.Reload(ctx); err != nil {
		return err
	}

	header, rows := session.Table.Snapshot()
	printTable(cmd.OutOrStdout(), header, rows)
	printErrors(cmd.ErrOrStderr(), session)
	return loadFailures(session)
}
