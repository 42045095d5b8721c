package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/ports"
)

const (
	serviceName    = "mexp"
	serviceVersion = "1.0.0"
)

// Exporter exports experiment fetch and mutation outcomes to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	fetchTotal    metric.Int64Counter
	fetchDuration metric.Float64Histogram
	mutationTotal metric.Int64Counter
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	e, err := newExporter(ctx, sdkmetric.NewPeriodicReader(exp))
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(e.provider)
	return e, nil
}

func newExporter(ctx context.Context, reader sdkmetric.Reader) (*Exporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	fetchTotal, err := meter.Int64Counter(
		"mexp_experiment_fetch_total",
		metric.WithDescription("Experiment summary fetches by outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch counter: %w", err)
	}

	fetchDuration, err := meter.Float64Histogram(
		"mexp_experiment_fetch_duration_seconds",
		metric.WithDescription("Experiment summary fetch latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch duration histogram: %w", err)
	}

	mutationTotal, err := meter.Int64Counter(
		"mexp_mutation_total",
		metric.WithDescription("Notes saves, deletes and downloads by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mutation counter: %w", err)
	}

	return &Exporter{
		provider:      provider,
		fetchTotal:    fetchTotal,
		fetchDuration: fetchDuration,
		mutationTotal: mutationTotal,
	}, nil
}

// RecordFetch records one experiment summary fetch.
func (e *Exporter) RecordFetch(ctx context.Context, project string, elapsed time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("project_name", project),
		attribute.String("outcome", outcome(err)),
	)
	e.fetchTotal.Add(ctx, 1, opt)
	e.fetchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("project_name", project)))
}

// RecordMutation records one notes save, delete or download.
func (e *Exporter) RecordMutation(ctx context.Context, project, op string, err error) {
	e.mutationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("project_name", project),
		attribute.String("op", op),
		attribute.String("outcome", outcome(err)),
	))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

// outcome is "ok" or the request error kind.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := domain.KindOf(err); kind != domain.KindNone {
		return kind.String()
	}
	return "error"
}

var _ ports.MetricsExporter = (*Exporter)(nil)
