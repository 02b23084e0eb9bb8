package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/devansh3112/product-harmony-sphere/internal/metrics"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

func TestMultiSink(t *testing.T) {
	a, b := &collectSink{}, &collectSink{}
	failing := SinkFunc(func(context.Context, Event) error { return errors.New("down") })
	m := MultiSink{a, nil, failing, b}

	err := m.Emit(context.Background(), Event{Name: EventSearch})
	if err == nil {
		t.Fatal("expected joined error from failing sink")
	}
	if len(a.all()) != 1 || len(b.all()) != 1 {
		t.Error("every healthy sink should receive the event")
	}
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))
	dur := 2.5
	err := sink.Emit(context.Background(), Event{
		Name: EventResultClick,
		AnalyticsEvent: models.AnalyticsEvent{
			Query:          "dlp",
			Category:       "DLP",
			ResultsCount:   -1,
			SelectedResult: &models.SelectedResult{ID: "3", Type: "product"},
			SearchDuration: &dur,
			SessionID:      "s",
		},
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event"] != EventResultClick || fields["selected_id"] != "3" || fields["category"] != "DLP" {
		t.Errorf("fields = %v", fields)
	}
}

func TestPrometheusSink(t *testing.T) {
	sink := NewPrometheusSink()
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.SearchesTotal.WithLabelValues("false"))
	_ = sink.Emit(ctx, Event{Name: EventSearch, AnalyticsEvent: models.AnalyticsEvent{ResultsCount: 4}})
	if got := testutil.ToFloat64(metrics.SearchesTotal.WithLabelValues("false")); got != before+1 {
		t.Errorf("searches_total{has_filters=false} = %f, want %f", got, before+1)
	}

	clicks := testutil.ToFloat64(metrics.ResultClicksTotal.WithLabelValues("feature"))
	_ = sink.Emit(ctx, Event{Name: EventResultClick, AnalyticsEvent: models.AnalyticsEvent{
		SelectedResult: &models.SelectedResult{Type: "feature"},
	}})
	if got := testutil.ToFloat64(metrics.ResultClicksTotal.WithLabelValues("feature")); got != clicks+1 {
		t.Errorf("result_clicks_total{type=feature} = %f, want %f", got, clicks+1)
	}

	dur := 12.0
	_ = sink.Emit(ctx, Event{Name: EventSearchPerformance, AnalyticsEvent: models.AnalyticsEvent{SearchDuration: &dur}})
	if testutil.CollectAndCount(metrics.SearchDuration) != 1 {
		t.Error("expected search duration histogram to be collected")
	}
}
