package analytics

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/metrics"
)

// Sink receives dispatched events.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) error { return nil })

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []Sink

// Emit delivers ev to each sink in order.
func (m MultiSink) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a LogSink writing to l.
func NewLogSink(l *zap.Logger) *LogSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogSink{logger: l}
}

// Emit logs ev at info level.
func (s *LogSink) Emit(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("event", ev.Name),
		zap.String("query", ev.Query),
		zap.Int("results_count", ev.ResultsCount),
		zap.Int64("timestamp", ev.Timestamp),
	}
	if ev.SessionID != "" {
		fields = append(fields, zap.String("session_id", ev.SessionID))
	}
	if ev.Category != "" {
		fields = append(fields, zap.String("category", ev.Category))
	}
	if len(ev.Filters) > 0 {
		fields = append(fields, zap.Any("filters", ev.Filters))
	}
	if ev.SelectedResult != nil {
		fields = append(fields,
			zap.String("selected_id", ev.SelectedResult.ID),
			zap.String("selected_type", ev.SelectedResult.Type),
			zap.Int("position", ev.SelectedResult.Position))
	}
	if ev.SearchDuration != nil {
		fields = append(fields, zap.Float64("duration_ms", *ev.SearchDuration))
	}
	s.logger.Info("search analytics", fields...)
	return nil
}

// PrometheusSink turns events into counters and histograms.
type PrometheusSink struct{}

// NewPrometheusSink registers the search metrics and returns the sink.
func NewPrometheusSink() *PrometheusSink {
	metrics.RegisterSearchMetrics()
	return &PrometheusSink{}
}

// Emit updates the metric matching ev.Name.
func (PrometheusSink) Emit(_ context.Context, ev Event) error {
	switch ev.Name {
	case EventSearch:
		metrics.ObserveSearch(ev.ResultsCount, len(ev.Filters) > 0)
	case EventResultClick:
		var typ string
		if ev.SelectedResult != nil {
			typ = ev.SelectedResult.Type
		}
		metrics.ObserveClick(typ)
	case EventSearchPerformance:
		if ev.SearchDuration != nil {
			metrics.ObserveSearchDuration(time.Duration(*ev.SearchDuration * float64(time.Millisecond)))
		}
	}
	return nil
}
