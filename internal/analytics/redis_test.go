package analytics

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

func newMiniredisSink(t *testing.T, opts ...RedisOption) (*RedisStreamSink, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStreamSink(client, "", opts...), client
}

func TestRedisStreamSink_Emit(t *testing.T) {
	sink, client := newMiniredisSink(t)
	ctx := context.Background()
	if sink.Stream() != DefaultRedisStream {
		t.Fatalf("Stream() = %q, want default", sink.Stream())
	}

	ev := Event{Name: EventResultClick, AnalyticsEvent: models.AnalyticsEvent{
		Query:          "black",
		ResultsCount:   -1,
		Timestamp:      1700000000000,
		SelectedResult: &models.SelectedResult{ID: "2", Title: "BlackBerry", Type: "product", Position: 1},
		SessionID:      "abc",
	}}
	if err := sink.Emit(ctx, ev); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	msgs, err := client.XRange(ctx, DefaultRedisStream, "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d stream entries, want 1", len(msgs))
	}
	v := msgs[0].Values
	if v["event"] != EventResultClick || v["query"] != "black" || v["results_count"] != "-1" {
		t.Errorf("values = %v", v)
	}
	if v["selected_id"] != "2" || v["session_id"] != "abc" {
		t.Errorf("values = %v", v)
	}

	var decoded models.AnalyticsEvent
	if err := json.Unmarshal([]byte(v["payload"].(string)), &decoded); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if decoded.SelectedResult == nil || decoded.SelectedResult.Position != 1 {
		t.Errorf("decoded payload = %+v", decoded)
	}
}

func TestRedisStreamSink_closedClient(t *testing.T) {
	sink, client := newMiniredisSink(t)
	_ = client.Close()
	if err := sink.Emit(context.Background(), Event{Name: EventSearch}); err == nil {
		t.Fatal("expected error from closed client")
	}
}

func TestNewRedisStreamSinkFromURL(t *testing.T) {
	if _, err := NewRedisStreamSinkFromURL("not-a-url", ""); err == nil {
		t.Error("expected parse error")
	}
	s, err := NewRedisStreamSinkFromURL("redis://localhost:6379/0", "custom", WithMaxLen(100))
	if err != nil {
		t.Fatalf("NewRedisStreamSinkFromURL: %v", err)
	}
	defer s.Close()
	if s.Stream() != "custom" || s.maxLen != 100 {
		t.Errorf("sink = %+v", s)
	}
}
