package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mexp/internal/app"
	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  mexp migrate      # Run all pending migrations
  mexp migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := migrate.New(db.DB)
	if err != nil {
		return err
	}

	current, _, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %d\n", current)

	target := m.Latest()
	if len(args) == 1 {
		target, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
	}
	if target == current {
		fmt.Fprintln(out, "Already at target version")
		return nil
	}

	n, migrateErr := m.To(ctx, target)
	if err := db.Sync(); err != nil {
		logx.Ctx(ctx).Warn("failed to sync migrations to remote", "err", err)
	}
	if migrateErr != nil {
		return migrateErr
	}
	fmt.Fprintf(out, "Applied %d migration(s), now at version %d\n", n, target)
	return nil
}
