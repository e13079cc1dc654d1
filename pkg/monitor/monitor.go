// Package monitor provides a single-slot mailbox for publishing values
// from the realtime thread to a blocking consumer without ever stalling
// the producer.
package monitor

import "sync"

// Slot shares one value between a non-blocking producer and a blocking
// consumer. The producer side takes the lock with TryLock and silently
// skips the update on contention, so staleness is bounded by one skipped
// publication. One producer and one consumer per slot; more consumers
// would need their own wakeup bookkeeping, which Slot does not provide.
type Slot[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	value    T
	fresh    bool
	shutdown bool
}

// NewSlot creates a slot holding an initial value.
func NewSlot[T any](initial T) *Slot[T] {
	s := &Slot[T]{value: initial}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Update applies fn to the stored value and wakes the consumer. If the
// lock is contended the update is dropped and Update returns false
// immediately; it never blocks.
func (s *Slot[T]) Update(fn func(*T)) bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()
	fn(&s.value)
	s.fresh = true
	s.cond.Signal()
	return true
}

// OnChanged blocks waiting for updates, invoking fn with the current value
// each time new data arrives. It returns once Shutdown is called.
func (s *Slot[T]) OnChanged(fn func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		for !s.fresh && !s.shutdown {
			s.cond.Wait()
		}
		if s.shutdown {
			return
		}
		fn(s.value)
		s.fresh = false
	}
}

// Shutdown wakes the consumer and makes OnChanged return.
func (s *Slot[T]) Shutdown() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	s.cond.Broadcast()
}
