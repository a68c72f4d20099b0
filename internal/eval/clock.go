package eval

import "sync/atomic"

// Clock is a monotonic logical clock stamping ledger entries.
//
// All bonus and history entries carry a strictly increasing seq from this
// clock, NEVER wall-clock time. A fresh clock starts every pass, so two
// passes over identical inputs produce identical timestamps - wall time
// would break the idempotence guarantee and the timeline ordering.
//
// Thread-safety: atomic, though a pass is single-threaded by design.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
