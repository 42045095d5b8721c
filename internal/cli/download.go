package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <experiment>",
	Short: "Download an experiment archive",
	Long: `Download the zip archive of an experiment (execution info, results and
logs) to <dir>/<project>-<experiment>.zip.

Examples:
  mexp download 2019-09-04T10-12-01-004512 -p mnist --dir ./archives`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

var downloadDir string

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "", "target directory (overrides MEXP_DOWNLOAD_DIR)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	if downloadDir != "" {
		cfg.Client.DownloadDir = downloadDir
	}
	ctx := cmd.Context()
	session, metrics, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics(ctx, metrics)

	if err := selectOnly(session, args[0]); err != nil {
		return err
	}
	path, err := session.DownloadSelected(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return nil
}
