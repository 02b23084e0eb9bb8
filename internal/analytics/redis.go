package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisStream is the stream events are appended to.
const DefaultRedisStream = "portfolio:search-events"

// RedisStreamSink appends events to a Redis stream with XADD.
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// RedisOption configures a RedisStreamSink.
type RedisOption func(*RedisStreamSink)

// WithMaxLen caps the stream length approximately.
func WithMaxLen(n int64) RedisOption {
	return func(s *RedisStreamSink) {
		s.maxLen = n
	}
}

// NewRedisStreamSink wraps an existing client.
func NewRedisStreamSink(client *redis.Client, stream string, opts ...RedisOption) *RedisStreamSink {
	if stream == "" {
		stream = DefaultRedisStream
	}
	s := &RedisStreamSink{client: client, stream: stream}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisStreamSinkFromURL connects using a redis:// URL.
func NewRedisStreamSinkFromURL(url, stream string, opts ...RedisOption) (*RedisStreamSink, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStreamSink(redis.NewClient(o), stream, opts...), nil
}

// Stream returns the target stream key.
func (s *RedisStreamSink) Stream() string {
	return s.stream
}

// Emit appends ev to the stream.
func (s *RedisStreamSink) Emit(ctx context.Context, ev Event) error {
	values, err := eventToValues(ev)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}

// eventToValues flattens an event into stream fields. The full record is kept
// under "payload" as JSON.
func eventToValues(ev Event) (map[string]interface{}, error) {
	payload, err := json.Marshal(ev.AnalyticsEvent)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	values := map[string]interface{}{
		"event":         ev.Name,
		"query":         ev.Query,
		"results_count": strconv.Itoa(ev.ResultsCount),
		"timestamp":     strconv.FormatInt(ev.Timestamp, 10),
		"payload":       string(payload),
	}
	if ev.SessionID != "" {
		values["session_id"] = ev.SessionID
	}
	if ev.SelectedResult != nil {
		values["selected_id"] = ev.SelectedResult.ID
		values["selected_type"] = ev.SelectedResult.Type
	}
	return values, nil
}
