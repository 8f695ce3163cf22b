package suggest

import (
	"sync"
	"time"
)

// DefaultThrottleInterval is the minimum spacing between two upstream requests
const DefaultThrottleInterval = 500 * time.Millisecond

// Throttle enforces a minimum interval between outbound requests. It keeps the
// time of the last admitted request and a single slot for a deferred attempt.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	pending  *deferral
}

type deferral struct {
	timer *time.Timer
	ready chan bool
}

// NewThrottle creates a throttle; a non-positive interval uses DefaultThrottleInterval
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	return &Throttle{interval: interval}
}

// Admit reports whether a request may be issued right now, recording the
// issue time when it may. Otherwise it cancels any pending deferral, schedules
// a new one a full interval out and returns its channel. The channel yields
// true when the deferral fires and false if a later Admit superseded it.
func (t *Throttle) Admit() (bool, <-chan bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if t.last.IsZero() || now.Sub(t.last) >= t.interval {
		t.last = now
		return true, nil
	}

	if prev := t.pending; prev != nil {
		prev.timer.Stop()
		prev.ready <- false
		t.pending = nil
	}

	d := &deferral{ready: make(chan bool, 1)}
	d.timer = time.AfterFunc(t.interval, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		// a superseded timer that raced Stop must not resolve
		if t.pending != d {
			return
		}
		t.pending = nil
		d.ready <- true
	})
	t.pending = d

	return false, d.ready
}

// Pending reports whether a deferred attempt is scheduled
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Interval returns the configured minimum spacing
func (t *Throttle) Interval() time.Duration {
	return t.interval
}
