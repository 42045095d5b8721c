package explorer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/internal/ports"
)

var (
	ErrControlDisabled = errors.New("control is disabled for the current selection")
	ErrInFlight        = errors.New("a previous request for this control is still pending")
	ErrNoSelection     = errors.New("no experiment selected")
	ErrUnsafeName      = errors.New("name cannot be used in a file name")
)

// Reloader rebuilds the table after a successful mutation.
type Reloader interface {
	Reload(ctx context.Context) error
}

// MutationClient sends notes, delete and download requests for selected
// experiments. Each control allows one request in flight; a second call while
// the first is pending returns ErrInFlight without contacting the server.
// Calls on a control the selection disables return ErrControlDisabled.
type MutationClient struct {
	api         ports.ExperimentAPI
	selection   *Selection
	reloader    Reloader
	notifier    Notifier
	metrics     ports.MetricsExporter
	downloadDir string

	mu      sync.Mutex
	loading map[string]bool
}

type MutationOption func(*MutationClient)

func WithDownloadDir(dir string) MutationOption {
	return func(c *MutationClient) { c.downloadDir = dir }
}

func WithMutationMetrics(m ports.MetricsExporter) MutationOption {
	return func(c *MutationClient) {
		if m != nil {
			c.metrics = m
		}
	}
}

func NewMutationClient(api ports.ExperimentAPI, selection *Selection, reloader Reloader, notifier Notifier, opts ...MutationOption) *MutationClient {
	if notifier == nil {
		notifier = discard
	}
	c := &MutationClient{
		api:       api,
		selection: selection,
		reloader:  reloader,
		notifier:  notifier,
		metrics:   noopMetrics{},
		loading:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Loading reports whether the named control has a request in flight.
func (c *MutationClient) Loading(control string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[control]
}

// LoadNotes fetches the notes of one experiment for editing.
func (c *MutationClient) LoadNotes(ctx context.Context, project, experimentID string) ([]string, error) {
	if !c.selection.Enabled(ControlEdit.Name) {
		return nil, ErrControlDisabled
	}
	notes, err := c.api.GetNotes(ctx, project, experimentID)
	if err != nil {
		logx.WithExperiment(logx.Project(ctx, project), experimentID).Warn("notes fetch failed", "err", err)
		notifyError(c.notifier, fmt.Sprintf("could not load notes for %s", experimentID), err)
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return notes, nil
}

// SaveNotes replaces the notes of one experiment and reloads on success.
func (c *MutationClient) SaveNotes(ctx context.Context, project, experimentID string, notes []string) error {
	if !c.selection.Enabled(ControlEdit.Name) {
		return ErrControlDisabled
	}
	if !c.begin(ControlEdit.Name) {
		return ErrInFlight
	}
	defer c.end(ControlEdit.Name)

	err := c.api.SaveNotes(ctx, project, experimentID, notes)
	return c.finish(ctx, project, "save_notes", fmt.Sprintf("saved notes for %s", experimentID), err)
}

// DeleteExperiments removes the given experiments and reloads on success.
func (c *MutationClient) DeleteExperiments(ctx context.Context, project string, experimentIDs []string) error {
	if !c.selection.Enabled(ControlDelete.Name) {
		return ErrControlDisabled
	}
	if c.Loading(ControlDelete.Name) {
		return ErrInFlight
	}
	if len(experimentIDs) == 0 {
		return ErrNoSelection
	}
	if !c.begin(ControlDelete.Name) {
		return ErrInFlight
	}
	defer c.end(ControlDelete.Name)

	err := c.api.DeleteExperiments(ctx, project, experimentIDs)
	return c.finish(ctx, project, "delete", fmt.Sprintf("deleted %d experiment(s)", len(experimentIDs)), err)
}

// DownloadExperiment saves the experiment archive into the download
// directory and returns the file path. Downloads are not guarded against
// repeats and never reload. An archive already at the path is only replaced
// once the new one has been fully received.
func (c *MutationClient) DownloadExperiment(ctx context.Context, project, experimentID string) (string, error) {
	if !c.selection.Enabled(ControlDownload.Name) {
		return "", ErrControlDisabled
	}

	log := logx.WithExperiment(logx.Project(ctx, project), experimentID)
	name, err := archiveName(project, experimentID)
	if err == nil {
		path := filepath.Join(c.downloadDir, name)
		err = c.download(ctx, project, experimentID, path)
		if err == nil {
			c.metrics.RecordMutation(ctx, project, "download", nil)
			log.Info("experiment downloaded", "path", path)
			notifyInfo(c.notifier, fmt.Sprintf("downloaded %s", path))
			return path, nil
		}
	}

	c.metrics.RecordMutation(ctx, project, "download", err)
	log.Warn("download failed", "url", c.api.DownloadURL(project, experimentID), "err", err)
	notifyError(c.notifier, fmt.Sprintf("could not download %s", experimentID), err)
	return "", err
}

// archiveName is "<project>-<experiment>.zip". Names that could leave the
// download directory are rejected.
func archiveName(project, experimentID string) (string, error) {
	for _, part := range []string{project, experimentID} {
		if part == "" || strings.ContainsAny(part, `/\`) || strings.ContainsRune(part, 0) {
			return "", fmt.Errorf("%w: %q", ErrUnsafeName, part)
		}
	}
	return fmt.Sprintf("%s-%s.zip", project, experimentID), nil
}

// download streams into a temporary file next to path and renames it into
// place on success.
func (c *MutationClient) download(ctx context.Context, project, experimentID, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create download file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := c.api.Download(ctx, project, experimentID, tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to download experiment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write download file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save download file: %w", err)
	}
	return nil
}

// finish records the outcome and reloads only when the request succeeded.
func (c *MutationClient) finish(ctx context.Context, project, op, success string, err error) error {
	c.metrics.RecordMutation(ctx, project, op, err)
	log := logx.Project(ctx, project)

	if err != nil {
		log.Warn("mutation failed", "op", op, "err", err)
		notifyError(c.notifier, fmt.Sprintf("%s failed", op), err)
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	log.Info("mutation succeeded", "op", op)
	notifyInfo(c.notifier, success)
	if c.reloader == nil {
		return nil
	}
	if err := c.reloader.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload after %s: %w", op, err)
	}
	return nil
}

func (c *MutationClient) begin(control string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading[control] {
		return false
	}
	c.loading[control] = true
	return true
}

func (c *MutationClient) end(control string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loading, control)
}
