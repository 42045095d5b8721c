package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mexp/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "mexp",
	Short: "Browse and curate machine learning experiments",
	Long: `mexp keeps a table of experiments for a project in sync with an experiment
server. Metric columns grow as experiment summaries arrive, and selected
experiments can be annotated, downloaded, exported or deleted.

Run "mexp serve" to start a local experiment server backed by libsql.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	serverURL string
	project   string

	cfg *app.Config
)

// Execute runs the command tree with ctx, which carries the logger.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "experiment server URL (overrides MEXP_SERVER_URL)")
	rootCmd.PersistentFlags().StringVarP(&project, "project", "p", "", "project name (overrides MEXP_PROJECT)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := app.New()
	if err != nil {
		return err
	}
	if serverURL != "" {
		c.Client.ServerURL = serverURL
	}
	if project != "" {
		c.Client.Project = project
	}
	cfg = c
	return nil
}
