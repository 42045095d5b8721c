package otel

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/emiliopalmerini/mexp/internal/domain"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestExporter_RecordsOutcomes(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	e, err := newExporter(ctx, reader)
	if err != nil {
		t.Fatalf("newExporter failed: %v", err)
	}
	defer e.Close(ctx)

	rejected := &domain.RequestError{Op: "get experiment", Kind: domain.KindServerRejected, Status: 500}
	e.RecordFetch(ctx, "proj", 20*time.Millisecond, nil)
	e.RecordFetch(ctx, "proj", 30*time.Millisecond, nil)
	e.RecordFetch(ctx, "proj", 5*time.Millisecond, rejected)
	e.RecordMutation(ctx, "proj", "delete", nil)

	data := collect(t, reader)

	fetches, ok := data["mexp_experiment_fetch_total"].(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("fetch counter missing or wrong type: %T", data["mexp_experiment_fetch_total"])
	}
	byOutcome := map[string]int64{}
	for _, dp := range fetches.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("outcome"))
		byOutcome[v.AsString()] += dp.Value
	}
	if byOutcome["ok"] != 2 || byOutcome["server_rejected"] != 1 {
		t.Errorf("unexpected fetch outcomes %v", byOutcome)
	}

	hist, ok := data["mexp_experiment_fetch_duration_seconds"].(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 3 {
		t.Errorf("unexpected fetch histogram %+v", data["mexp_experiment_fetch_duration_seconds"])
	}

	mutations, ok := data["mexp_mutation_total"].(metricdata.Sum[int64])
	if !ok || len(mutations.DataPoints) != 1 || mutations.DataPoints[0].Value != 1 {
		t.Errorf("unexpected mutation counter %+v", data["mexp_mutation_total"])
	}
}

func TestOutcome(t *testing.T) {
	if got := outcome(nil); got != "ok" {
		t.Errorf("outcome(nil) = %q", got)
	}
	if got := outcome(errors.New("boom")); got != "error" {
		t.Errorf("outcome(plain) = %q", got)
	}
	err := &domain.RequestError{Kind: domain.KindNetworkFailure, Err: errors.New("refused")}
	if got := outcome(err); got != "network_failure" {
		t.Errorf("outcome(network) = %q", got)
	}
}

func TestNew_DisabledIsNoOp(t *testing.T) {
	e, err := New(context.Background(), Config{Enabled: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := e.(*NoOpExporter); !ok {
		t.Errorf("expected no-op exporter without endpoint, got %T", e)
	}
	e.RecordFetch(context.Background(), "p", time.Second, nil)
	if err := e.Close(context.Background()); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
