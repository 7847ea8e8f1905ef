// Package mailbox implements a single-slot, latest-value hand-off between a
// producer and a consumer running at different rates.
//
// Publish never blocks and overwrites whatever is in the slot. Consumers
// either hold the newest value (Latest) or wait for one they have not seen
// yet (Next). Nothing is ever queued: only the newest value matters.
package mailbox

import (
	"sync"
	"sync/atomic"
)

// Slot is a single-slot mailbox with overwrite semantics.
type Slot[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	value   T
	has     bool // a value has ever been published
	fresh   bool // the value has not been taken by Next yet
	closed  bool
	seq     uint64
	dropped atomic.Uint64
}

// New creates an empty slot.
func New[T any]() *Slot[T] {
	s := &Slot[T]{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Publish replaces the slot's value and wakes a waiting Next.
// Overwriting a value Next never took counts as a drop.
// Publishing to a closed slot is a no-op.
func (s *Slot[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if s.fresh {
		s.dropped.Add(1)
	}

	s.value = v
	s.has = true
	s.fresh = true
	s.seq++
	s.cond.Signal()
}

// Latest returns the newest value without consuming it.
// The second result is false until something has been published.
func (s *Slot[T]) Latest() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.has
}

// Next blocks until a value not yet returned by Next is available, then
// takes it. It returns false once the slot is closed.
func (s *Slot[T]) Next() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.fresh && !s.closed {
		s.cond.Wait()
	}

	if s.closed {
		var zero T
		return zero, false
	}

	s.fresh = false
	return s.value, true
}

// Close wakes every waiting Next and makes later calls return false.
// Latest keeps returning the last value. Close is idempotent.
func (s *Slot[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.cond.Broadcast()
}

// Seq returns how many values have been published.
func (s *Slot[T]) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Dropped returns how many published values were overwritten before Next took them.
func (s *Slot[T]) Dropped() uint64 {
	return s.dropped.Load()
}
