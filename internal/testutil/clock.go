package testutil

import "sync"

// DeterministicClock hands out created_at values for test events.
//
// Real timestamps would make fixtures order-dependent on wall time; this
// clock makes the same fixture produce byte-identical events on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start int64
	now   int64
}

// NewDeterministicClock creates a clock whose first Next() returns start+1.
func NewDeterministicClock(start int64) *DeterministicClock {
	return &DeterministicClock{start: start, now: start}
}

// Next advances one second and returns the new timestamp.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now++
	return c.now
}

// Current returns the last timestamp handed out without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to its start value.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
