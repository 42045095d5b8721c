package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/internal/ports"
)

// RowHook is called once per row after its fetch settles, in arrival order.
// err is nil when the row was rendered.
type RowHook func(id string, err error)

// Loader fetches every row's summary independently and renders each one as it
// arrives. Rows whose fetch fails keep their placeholder cells.
type Loader struct {
	api      ports.ExperimentAPI
	table    *Table
	notifier Notifier
	metrics  ports.MetricsExporter
	limit    int
	onRow    RowHook
}

type LoaderOption func(*Loader)

// WithConcurrency caps the number of fetches in flight. Zero means no cap.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) { l.limit = n }
}

func WithRowHook(h RowHook) LoaderOption {
	return func(l *Loader) { l.onRow = h }
}

func WithLoaderMetrics(m ports.MetricsExporter) LoaderOption {
	return func(l *Loader) {
		if m != nil {
			l.metrics = m
		}
	}
}

func NewLoader(api ports.ExperimentAPI, table *Table, notifier Notifier, opts ...LoaderOption) *Loader {
	if notifier == nil {
		notifier = discard
	}
	l := &Loader{
		api:      api,
		table:    table,
		notifier: notifier,
		metrics:  noopMetrics{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll issues one fetch per current row without waiting for earlier ones
// and returns once every fetch has settled. The returned error joins the
// per-row failures; rendering never depends on it.
func (l *Loader) LoadAll(ctx context.Context, project string) error {
	generation := l.table.Generation()
	ids := l.table.IDs()
	log := logx.Project(ctx, project)
	log.Debug("loading experiments", "rows", len(ids))

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	if l.limit > 0 {
		g.SetLimit(l.limit)
	}
	for _, id := range ids {
		g.Go(func() error {
			if err := l.loadRow(ctx, generation, project, id); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Debug("experiments loaded", "rows", len(ids), "failed", len(errs))
	return errors.Join(errs...)
}

func (l *Loader) loadRow(ctx context.Context, generation uint64, project, id string) error {
	start := time.Now()
	summary, err := l.api.GetExperiment(ctx, project, id)
	if err == nil {
		_, err = l.table.render(generation, id, summary)
		if errors.Is(err, ErrMalformedSummary) {
			err = &domain.RequestError{Op: "get experiment", Kind: domain.KindMalformedResponse, Err: err}
		}
	}

	// A reset while this fetch was pending means the row belongs to a page
	// that no longer exists.
	if errors.Is(err, errStaleGeneration) || errors.Is(err, ErrUnknownRow) {
		return nil
	}

	l.metrics.RecordFetch(ctx, project, time.Since(start), err)
	if err != nil {
		logx.WithExperiment(logx.Project(ctx, project), id).
			Warn("experiment fetch failed", "kind", domain.KindOf(err).String(), "err", err)
		notifyError(l.notifier, fmt.Sprintf("could not load %s", id), err)
	}
	if l.onRow != nil {
		l.onRow(id, err)
	}
	if err != nil {
		return fmt.Errorf("failed to load experiment %s: %w", id, err)
	}
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordFetch(context.Context, string, time.Duration, error) {}
func (noopMetrics) RecordMutation(context.Context, string, string, error)     {}
func (noopMetrics) Close(context.Context) error                               { return nil }
