// Package testutil holds deterministic stand-ins for the dispatcher's clock
// and flow token generator, so interaction runs can be replayed with
// identical seqs and tokens.
package testutil

import "sync"

// DeterministicClock is a resettable logical clock for tests.
//
// Unlike dispatch.Clock it can be reset, so one scenario can be replayed
// with identical seq values. The first call to Next returns 1.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock starting at 0.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset sets the clock back to 0.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
