package testfixtures

import (
	"sync"
	"time"
)

// ReferenceTime returns the canonical baseline timestamp used by fixtures:
// a Wednesday morning, 2024-01-10 09:00 UTC.
func ReferenceTime() time.Time {
	return time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
}

// Clock is a manually driven time source for tests. Time never moves unless a
// test moves it.
type Clock struct {
	mu   sync.RWMutex
	base time.Time
	skew time.Duration
}

// NewClock returns a clock pinned to start, or to ReferenceTime when start is
// the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{base: start}
}

// Now reports the instant the clock is currently pinned to.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base.Add(c.skew)
}

// NowFunc exposes Now as a function suitable for dependency injection. A nil
// clock yields the real time source.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set re-pins the clock to an absolute instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = t
	c.skew = 0
}

// Advance moves the clock forward by d and returns the resulting instant.
// Negative durations move it backwards.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skew += d
	return c.base.Add(c.skew)
}
