package debounce

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []string
	fired  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestDebouncer_typingBurstEmitsOnce(t *testing.T) {
	d := New[string]()
	rec := newRecorder()
	for _, q := range []string{"e", "en", "end"} {
		d.Schedule(q, 50*time.Millisecond, rec.record)
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-rec.fired:
	case <-time.After(time.Second):
		t.Fatal("debounced callback never fired")
	}
	time.Sleep(100 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 || got[0] != "end" {
		t.Fatalf("emissions = %v, want [end]", got)
	}
}

func TestDebouncer_spacedCallsEmitEach(t *testing.T) {
	d := New[string]()
	rec := newRecorder()
	d.Schedule("a", 10*time.Millisecond, rec.record)
	<-rec.fired
	d.Schedule("b", 10*time.Millisecond, rec.record)
	<-rec.fired

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("emissions = %v, want [a b]", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New[string]()
	rec := newRecorder()
	d.Schedule("x", 20*time.Millisecond, rec.record)
	if !d.Pending() {
		t.Fatal("expected pending value after Schedule")
	}
	d.Cancel()
	if d.Pending() {
		t.Fatal("expected no pending value after Cancel")
	}
	time.Sleep(60 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("cancelled value emitted: %v", got)
	}

	d.Schedule("y", 10*time.Millisecond, rec.record)
	select {
	case <-rec.fired:
	case <-time.After(time.Second):
		t.Fatal("debouncer unusable after Cancel")
	}
}

func TestDebouncer_StopRejectsFutureSchedules(t *testing.T) {
	d := New[string]()
	rec := newRecorder()
	d.Schedule("x", 20*time.Millisecond, rec.record)
	d.Stop()
	d.Schedule("y", time.Millisecond, rec.record)
	time.Sleep(60 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("emissions after Stop: %v", got)
	}
}

func TestChannel_emitsLatestAfterQuiet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan string)
	out := Channel(ctx, in, 40*time.Millisecond)

	for _, q := range []string{"e", "en", "end"} {
		in <- q
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case v := <-out:
		if v != "end" {
			t.Fatalf("got %q, want end", v)
		}
	case <-time.After(time.Second):
		t.Fatal("no emission")
	}

	select {
	case v, ok := <-out:
		if ok {
			t.Fatalf("unexpected second emission %q", v)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChannel_closesOnInputClose(t *testing.T) {
	in := make(chan int)
	out := Channel(context.Background(), in, time.Hour)
	in <- 1
	close(in)
	select {
	case v, ok := <-out:
		if ok {
			t.Fatalf("pending value %d flushed after close", v)
		}
	case <-time.After(time.Second):
		t.Fatal("output not closed")
	}
}

func TestChannel_closesOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan int)
	out := Channel(ctx, in, time.Hour)
	cancel()
	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("output not closed after cancel")
	}
}
