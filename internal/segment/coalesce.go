// Package segment turns the capture stream into discrete activity events
package segment

import (
	"sync"
	"time"
)

// Coalescer is a restartable single-shot timer. Reset cancels any pending
// fire and schedules a new one; Stop is idempotent. The callback runs on
// the timer goroutine and must serialize itself against other state
// mutations.
type Coalescer struct {
	mu    sync.Mutex
	timer *time.Timer
	fn    func()
}

// NewCoalescer creates a coalescer that invokes fn when the delay elapses.
func NewCoalescer(fn func()) *Coalescer {
	return &Coalescer{fn: fn}
}

// Reset schedules fn after delay, replacing any pending fire.
func (c *Coalescer) Reset(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		c.timer = time.AfterFunc(delay, c.fn)
		return
	}
	c.timer.Stop()
	c.timer.Reset(delay)
}

// Stop cancels any pending fire. Safe to call repeatedly or with nothing
// scheduled.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
}
