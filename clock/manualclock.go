package clock

import (
	"sync"
	"time"
)

// ManualClock is a Clock that only moves when told to. It is safe for
// concurrent use.
type ManualClock struct {
	lock sync.Mutex
	now  time.Time
}

// NewManualClock creates a ManualClock that starts at the current real time.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Now()}
}

// NewManualClockAt creates a ManualClock that starts at the given time.
func NewManualClockAt(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.now
}

// Advance moves the clock forward by d. Negative durations panic since a
// monotonic clock never goes back.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("clock cannot go backward")
	}

	c.lock.Lock()
	c.now = c.now.Add(d)
	c.lock.Unlock()
}

// AdvanceSeconds moves the clock forward by s seconds.
func (c *ManualClock) AdvanceSeconds(s TimeInSec) {
	c.Advance(Duration(s))
}
