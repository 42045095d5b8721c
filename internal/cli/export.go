package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mexp/internal/adapters/xlsx"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the experiment table to a spreadsheet",
	Long: `Load every experiment of a project and write the reconciled table,
including one column per metric, to an .xlsx workbook. Experiments that
fail to load are written with placeholder cells and reported on stderr.

Examples:
  mexp export -p mnist                 # writes <download dir>/mnist.xlsx
  mexp export -p mnist -o results.xlsx`,
	RunE: runExport,
}

var exportOutput string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, metrics, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics(ctx, metrics)

	if err := session.Reload(ctx); err != nil {
		return err
	}

	path := exportOutput
	if path == "" {
		path = filepath.Join(cfg.Client.DownloadDir, session.Project+".xlsx")
	}
	header, rows := session.Table.Snapshot()
	if err := xlsx.WriteFile(path, session.Project, header, rows); err != nil {
		return err
	}

	printErrors(cmd.ErrOrStderr(), session)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d experiment(s) to %s\n", len(rows), path)
	return loadFailures(session)
}
