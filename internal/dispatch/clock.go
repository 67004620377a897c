package dispatch

import "sync/atomic"

// Sequencer hands out strictly increasing sequence numbers.
type Sequencer interface {
	Next() int64
}

// Clock is the monotonic logical clock stamping invocations and
// completions. Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start, used to resume
// from the last seq in an existing trace log.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
