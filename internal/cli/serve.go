package cli

import (
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mexp/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the experiment server",
	Long: `Start the experiment server the explorer talks to. Experiments are stored
in libsql: a local file by default, or a Turso database (optionally through an
embedded replica) when MEXP_DATABASE_URL is set.

Examples:
  mexp serve                  # listen on :45710
  mexp serve --addr :8080`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides MEXP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	return app.Serve(cmd.Context(), cfg)
}
