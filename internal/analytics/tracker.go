// Package analytics records search telemetry and hands it to pluggable sinks
// without blocking the caller.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// Event names.
const (
	EventSearch            = "search"
	EventResultClick       = "search_result_click"
	EventSearchPerformance = "search_performance"
)

// DefaultBufferSize bounds the number of events waiting for a sink.
const DefaultBufferSize = 256

// UnknownCount is the results count of a click recorded without a known total.
const UnknownCount = -1

// Event is one telemetry record handed to a Sink.
type Event struct {
	Name string
	models.AnalyticsEvent
}

// Tracker stamps events and dispatches them asynchronously to a Sink.
// Recording never blocks: when the queue is full the event is dropped.
type Tracker struct {
	sink      Sink
	logger    *zap.Logger
	now       func() time.Time
	sessionID string
	queue     chan Event
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(l *zap.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithSessionID fixes the session identifier stamped on every event.
func WithSessionID(id string) TrackerOption {
	return func(t *Tracker) {
		t.sessionID = id
	}
}

// WithBufferSize sets the queue capacity. Values below 1 keep the default.
func WithBufferSize(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.queue = make(chan Event, n)
		}
	}
}

// WithSinkTimeout bounds each Sink.Emit call.
func WithSinkTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTracker starts a Tracker that delivers to sink. A nil sink discards events.
func NewTracker(sink Sink, opts ...TrackerOption) *Tracker {
	if sink == nil {
		sink = Discard
	}
	t := &Tracker{
		sink:      sink,
		logger:    zap.NewNop(),
		now:       time.Now,
		sessionID: uuid.NewString(),
		queue:     make(chan Event, DefaultBufferSize),
		timeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// SessionID returns the identifier stamped on every event.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// RecordSearch records a completed search.
func (t *Tracker) RecordSearch(query string, resultsCount int, filters models.QueryFilters) {
	ev := models.AnalyticsEvent{
		Query:        query,
		ResultsCount: resultsCount,
	}
	if len(filters) > 0 {
		ev.Filters = make(map[string]string, len(filters))
		for k, v := range filters {
			ev.Filters[k] = v
		}
	}
	t.enqueue(EventSearch, ev)
}

// RecordResultClick records a selected result. Pass UnknownCount when the
// total number of results is not known.
func (t *Tracker) RecordResultClick(query string, selected *models.SelectedResult, category string, resultsCount int) {
	t.enqueue(EventResultClick, models.AnalyticsEvent{
		Query:          query,
		Category:       category,
		ResultsCount:   resultsCount,
		SelectedResult: selected,
	})
}

// RecordSearchPerformance records how long a search took.
func (t *Tracker) RecordSearchPerformance(query string, duration time.Duration, resultsCount int) {
	ms := float64(duration) / float64(time.Millisecond)
	t.enqueue(EventSearchPerformance, models.AnalyticsEvent{
		Query:          query,
		ResultsCount:   resultsCount,
		SearchDuration: &ms,
	})
}

func (t *Tracker) enqueue(name string, ev models.AnalyticsEvent) {
	ev.Timestamp = t.now().UnixMilli()
	ev.SessionID = t.sessionID

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.logger.Debug("analytics event after close dropped", zap.String("event", name))
		return
	}
	select {
	case t.queue <- Event{Name: name, AnalyticsEvent: ev}:
	default:
		t.logger.Debug("analytics queue full, event dropped",
			zap.String("event", name),
			zap.String("query", ev.Query))
	}
}

func (t *Tracker) run() {
	defer t.wg.Done()
	for ev := range t.queue {
		t.deliver(ev)
	}
}

func (t *Tracker) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("analytics sink panicked",
				zap.String("event", ev.Name),
				zap.Any("panic", r))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if err := t.sink.Emit(ctx, ev); err != nil {
		t.logger.Warn("analytics sink failed",
			zap.String("event", ev.Name),
			zap.Error(err))
	}
}

// Close stops accepting events and waits until queued events are delivered.
func (t *Tracker) Close() {
	t.once.Do(func() {
		t.mu.Lock()
		t.closed = true
		close(t.queue)
		t.mu.Unlock()
	})
	t.wg.Wait()
}
