package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/emiliopalmerini/mexp/internal/app"
	"github.com/emiliopalmerini/mexp/internal/explorer"
	"github.com/emiliopalmerini/mexp/internal/ports"
)

var errNoProject = errors.New("no project given: use --project or MEXP_PROJECT")

func requireProject() (string, error) {
	if cfg.Client.Project == "" {
		return "", errNoProject
	}
	return cfg.Client.Project, nil
}

// newSession connects to the experiment server for the configured project.
// The returned exporter must be closed by the caller.
func newSession(ctx context.Context) (*explorer.Session, ports.MetricsExporter, error) {
	name, err := requireProject()
	if err != nil {
		return nil, nil, err
	}
	api, err := app.NewAPI(cfg)
	if err != nil {
		return nil, nil, err
	}
	metrics := app.NewMetrics(ctx, cfg)
	session := explorer.NewSession(api, name, explorer.Options{
		Concurrency: cfg.Client.LoadConcurrency,
		DownloadDir: cfg.Client.DownloadDir,
		Metrics:     metrics,
	})
	return session, metrics, nil
}

// selectOnly points the session's selection at exactly ids, without
// fetching the experiment list.
func selectOnly(s *explorer.Session, ids ...string) error {
	s.Selection.SetRows(ids)
	s.Selection.Clear()
	for _, id := range ids {
		if err := s.Selection.Toggle(id); err != nil {
			return err
		}
	}
	return nil
}

func printTable(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, explorer.NotesSeparator, " | ")
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

// printErrors writes every error notification the session collected.
func printErrors(w io.Writer, s *explorer.Session) {
	for _, n := range s.Notifications.Errors() {
		if n.Err != nil {
			fmt.Fprintf(w, "error: %s: %v\n", n.Message, n.Err)
			continue
		}
		fmt.Fprintf(w, "error: %s\n", n.Message)
	}
}

// loadFailures reports rows that kept their placeholder cells after a reload.
func loadFailures(s *explorer.Session) error {
	if failed := s.Table.Pending(); len(failed) > 0 {
		return fmt.Errorf("%d experiment(s) failed to load: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

func closeMetrics(ctx context.Context, m ports.MetricsExporter) {
	_ = m.Close(context.WithoutCancel(ctx))
}
