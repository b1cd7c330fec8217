package listkit

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces rapid calls into one and cancels superseded work.
// Unlike a fixed-delay last-call-wins timer, every newer call cancels the
// context handed to the previous invocation, so an in-flight request keyed to
// a stale keystroke is invalidated rather than raced.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewDebouncer constructs a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do schedules fn after the quiet period. A subsequent call before the period
// elapses replaces the scheduled fn; a call while fn is running cancels fn's
// context.
func (d *Debouncer) Do(parent context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		defer cancel()
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
}

// Stop cancels any scheduled or in-flight invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
