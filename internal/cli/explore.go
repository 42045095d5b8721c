package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/emiliopalmerini/mexp/internal/app"
	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/internal/tui"
	"github.com/emiliopalmerini/mexp/internal/util"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Open the interactive experiment table",
	Long: `Open the experiment table for a project in the terminal.

Rows appear immediately and fill in as experiment summaries arrive. Logs are
written to explore.log in the mexp data directory.

Examples:
  mexp explore -p mnist
  mexp explore -p mnist --server http://gpu-box:45710`,
	RunE: runExplore,
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	name, err := requireProject()
	if err != nil {
		return err
	}

	path, err := util.DataPath("explore.log")
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	logger := logx.WithProject(logx.NewStructured(logFile, cfg.Debug), name)
	ctx := pslog.ContextWithLogger(cmd.Context(), logger)

	api, err := app.NewAPI(cfg)
	if err != nil {
		return err
	}
	metrics := app.NewMetrics(ctx, cfg)
	defer closeMetrics(ctx, metrics)

	return tui.Run(ctx, api, name, tui.Options{
		Concurrency: cfg.Client.LoadConcurrency,
		DownloadDir: cfg.Client.DownloadDir,
		Metrics:     metrics,
	})
}
