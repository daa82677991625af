package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a thread-safe clock for tests that advances one
// second per reading, starting from a fixed epoch.
//
// Unlike time.Now, the same sequence of calls always returns the same
// times, so journal entries and golden output are reproducible.
type DeterministicClock struct {
	mu    sync.Mutex
	epoch time.Time
	ticks int64
}

// NewDeterministicClock creates a clock whose first reading is epoch + 1s.
func NewDeterministicClock(epoch time.Time) *DeterministicClock {
	return &DeterministicClock{epoch: epoch}
}

// Now advances the clock by one second and returns the new time.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.epoch.Add(time.Duration(c.ticks) * time.Second)
}

// Ticks returns how many times Now has been called.
func (c *DeterministicClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Reset rewinds the clock to its epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
