package testutil

import (
	"sync"
	"time"
)

// Now is the reference instant every fixture is built around.
var Now = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

// FixedClock hands out a settable instant for tests.
//
// Engines take "now" as a parameter; FixedClock lets a test move it forward
// between passes without rebuilding fixtures.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock stopped at Now.
func NewFixedClock() *FixedClock {
	return &FixedClock{now: Now}
}

// Now returns the current instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset stops the clock back at Now.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Now
}

// DaysAgo returns the calendar date n days before Now.
func DaysAgo(n int) time.Time {
	y, m, d := Now.AddDate(0, 0, -n).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
