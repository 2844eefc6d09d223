package input

import (
	"sync/atomic"
	"time"
)

// DefaultDebounce is the minimum spacing between two registered edges on
// one button.
const DefaultDebounce = 250 * time.Millisecond

// Edge is a single-producer/single-consumer press flag.
//
// The producer calls Capture from the interrupt/event path; debounce gating
// happens there. The consumer calls Take from the tick loop, which reads and
// clears the flag in one atomic swap. Presses are never queued: several
// registered edges before a Take are delivered as one.
type Edge struct {
	debounce time.Duration

	// Producer-owned; only Capture touches these.
	seen bool
	last time.Duration

	pending  atomic.Bool
	captured atomic.Uint64
	dropped  atomic.Uint64
}

// NewEdge creates an edge flag with the given debounce interval.
func NewEdge(debounce time.Duration) *Edge {
	return &Edge{debounce: debounce}
}

// Capture registers a physical transition observed at the monotonic time at.
// It returns false if the transition falls within the debounce interval of
// the previous registered edge and was dropped.
func (e *Edge) Capture(at time.Duration) bool {
	if e.seen && at-e.last < e.debounce {
		e.dropped.Add(1)
		return false
	}
	e.seen = true
	e.last = at
	e.pending.Store(true)
	e.captured.Add(1)
	return true
}

// Take reports whether an edge is pending and clears it.
func (e *Edge) Take() bool {
	return e.pending.Swap(false)
}

// Stats returns the number of registered and debounced-away transitions.
func (e *Edge) Stats() (captured, dropped uint64) {
	return e.captured.Load(), e.dropped.Load()
}
