package explorer

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/internal/ports"
)

// Options configures a Session.
type Options struct {
	// Concurrency caps parallel row fetches; zero fetches every row at once.
	Concurrency int
	DownloadDir string
	Metrics     ports.MetricsExporter
	OnRow       RowHook
	// Notifier receives notifications in addition to the session's own log.
	Notifier Notifier
}

// Session is the state of one explorer page for one project: the table, the
// selection and the clients that drive them.
type Session struct {
	Project       string
	Table         *Table
	Selection     *Selection
	Loader        *Loader
	Mutations     *MutationClient
	Notifications *NotificationLog

	api ports.ExperimentAPI
}

func NewSession(api ports.ExperimentAPI, project string, opts Options) *Session {
	s := &Session{
		Project:       project,
		Table:         NewTable(nil),
		Selection:     NewSelection(),
		Notifications: NewNotificationLog(0),
		api:           api,
	}

	var notifier Notifier = s.Notifications
	if opts.Notifier != nil {
		notifier = multiNotifier{s.Notifications, opts.Notifier}
	}

	s.Loader = NewLoader(api, s.Table, notifier,
		WithConcurrency(opts.Concurrency),
		WithRowHook(opts.OnRow),
		WithLoaderMetrics(opts.Metrics),
	)
	s.Mutations = NewMutationClient(api, s.Selection, s, notifier,
		WithDownloadDir(opts.DownloadDir),
		WithMutationMetrics(opts.Metrics),
	)
	return s
}

// Reload lists the project's experiments, resets the table and selection to
// them and loads every row. Only a failed listing is returned: a row that
// fails to load keeps its placeholder cells, is reported through the
// notifier and shows up in Table.Pending.
func (s *Session) Reload(ctx context.Context) error {
	ids, err := s.api.ListExperiments(ctx, s.Project)
	if err != nil {
		logx.Project(ctx, s.Project).Warn("experiment listing failed", "err", err)
		notifyError(s.Loader.notifier, "could not list experiments", err)
		return fmt.Errorf("failed to list experiments: %w", err)
	}

	s.Table.Reset(ids)
	s.Selection.SetRows(s.Table.IDs())
	_ = s.Loader.LoadAll(ctx, s.Project)
	return nil
}

// EditNotes fetches the notes of the single selected experiment.
func (s *Session) EditNotes(ctx context.Context) (string, []string, error) {
	id, err := s.selectedOne()
	if err != nil {
		return "", nil, err
	}
	notes, err := s.Mutations.LoadNotes(ctx, s.Project, id)
	return id, notes, err
}

// SaveNotes stores notes on experimentID, the experiment EditNotes returned.
// The id is passed back so a reload during editing cannot retarget the save.
func (s *Session) SaveNotes(ctx context.Context, experimentID string, notes []string) error {
	return s.Mutations.SaveNotes(ctx, s.Project, experimentID, notes)
}

// Logs fetches and parses the log lines recorded for one experiment.
func (s *Session) Logs(ctx context.Context, experimentID string) ([]domain.LogEntry, error) {
	summary, err := s.api.GetExperiment(ctx, s.Project, experimentID)
	if err != nil {
		logx.WithExperiment(logx.Project(ctx, s.Project), experimentID).Warn("log fetch failed", "err", err)
		notifyError(s.Loader.notifier, fmt.Sprintf("could not load logs for %s", experimentID), err)
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}
	return domain.ParseLogs(summary.Logs), nil
}

// DeleteSelected deletes every selected experiment.
func (s *Session) DeleteSelected(ctx context.Context) error {
	return s.Mutations.DeleteExperiments(ctx, s.Project, s.Selection.Selected())
}

// DownloadSelected downloads the first selected experiment.
func (s *Session) DownloadSelected(ctx context.Context) (string, error) {
	selected := s.Selection.Selected()
	if len(selected) == 0 {
		return "", ErrNoSelection
	}
	return s.Mutations.DownloadExperiment(ctx, s.Project, selected[0])
}

func (s *Session) selectedOne() (string, error) {
	selected := s.Selection.Selected()
	switch len(selected) {
	case 0:
		return "", ErrNoSelection
	case 1:
		return selected[0], nil
	default:
		return "", ErrControlDisabled
	}
}
