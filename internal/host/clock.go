package host

import "sync/atomic"

// Sequencer tracks the highest logical sequence number the host has
// committed. Implemented by Clock and testutil.DeterministicClock.
type Sequencer interface {
	Current() int64
	// Advance moves the position forward to seq. It never moves back.
	Advance(seq int64)
}

// Clock is a monotonic logical clock.
//
// Every logged transaction is stamped with a strictly increasing seq;
// wall-clock time never orders the log. The next seq is the larger of the
// clock and the log's MAX(seq) read inside the write transaction, so other
// processes writing the same database are accounted for.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClockAt creates a new clock starting at a specific sequence number.
// The host uses it to resume after the last logged transaction.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Advance moves the clock forward to seq if it is behind.
func (c *Clock) Advance(seq int64) {
	for {
		cur := c.seq.Load()
		if cur >= seq || c.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}

// Current returns the current sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
