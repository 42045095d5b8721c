package otel

import (
	"context"
	"time"

	"github.com/emiliopalmerini/mexp/internal/ports"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordFetch(context.Context, string, time.Duration, error) {}

func (e *NoOpExporter) RecordMutation(context.Context, string, string, error) {}

func (e *NoOpExporter) Close(context.Context) error {
	return nil
}

// New returns an OTLP exporter when cfg enables one and a no-op exporter
// otherwise.
func New(ctx context.Context, cfg Config) (ports.MetricsExporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return NewNoOpExporter(), nil
	}
	return NewExporter(ctx, cfg)
}
