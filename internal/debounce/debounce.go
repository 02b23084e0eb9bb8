// Package debounce delays a value until its producer has been quiet for a while.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs a callback with the most recent scheduled value once no newer
// value has been scheduled for the given delay.
type Debouncer[T any] struct {
	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New returns an idle Debouncer.
func New[T any]() *Debouncer[T] {
	return &Debouncer[T]{}
}

// Schedule replaces any pending value with value and arms a timer that calls fn
// after delay. A call scheduled after Stop is ignored.
func (d *Debouncer[T]) Schedule(value T, delay time.Duration, fn func(T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn(value)
	})
}

// Cancel drops the pending value, if any. The Debouncer stays usable.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop cancels the pending value and rejects all future Schedule calls.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

// Pending reports whether a value is waiting for its timer.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer[T]) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	// A timer that already fired and is waiting on mu sees a new generation.
	d.gen++
}

// Channel emits the latest value received on in once delay has passed without a
// newer one. The output closes when ctx is done or in is closed; a value still
// pending at that point is dropped.
func Channel[T any](ctx context.Context, in <-chan T, delay time.Duration) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		var (
			timer  *time.Timer
			fire   <-chan time.Time
			latest T
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				latest = v
				if timer == nil {
					timer = time.NewTimer(delay)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(delay)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case out <- latest:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
