package ports

import (
	"context"
	"time"
)

// MetricsExporter exports explorer activity to an external observability system.
type MetricsExporter interface {
	// RecordFetch records one experiment summary fetch. err is nil on success.
	RecordFetch(ctx context.Context, project string, elapsed time.Duration, err error)
	// RecordMutation records one notes save, delete or download.
	RecordMutation(ctx context.Context, project, op string, err error)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
