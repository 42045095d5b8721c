package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emiliopalmerini/mexp/internal/adapters/turso"
	"github.com/emiliopalmerini/mexp/internal/app"
	"github.com/emiliopalmerini/mexp/internal/web"
)

// runCLI executes the root command with args and returns everything written
// to stdout and stderr. Flags are reset first since the command tree is
// package state.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// testEnv points the data directory and download directory at temp dirs so
// store commands use a fresh local database.
func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	downloads := t.TempDir()
	t.Setenv("MEXP_DOWNLOAD_DIR", downloads)
	return downloads
}

// testServer serves the local store over HTTP, the way "mexp serve" does.
func testServer(t *testing.T) (*httptest.Server, *turso.Store) {
	t.Helper()
	db, store, err := app.OpenStore(context.Background(), &app.Config{})
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	srv := httptest.NewServer(web.NewServer(store, web.Config{}).Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = db.Close()
	})
	return srv, store
}
