package midi

import "sync/atomic"

// Ring is a lock-free single-producer single-consumer event queue between
// the MIDI listener thread and the realtime callback. The producer drops
// events when the ring is full; the consumer pops without blocking.
type Ring struct {
	events   []Event
	readPos  atomic.Uint64
	writePos atomic.Uint64
	mask     uint64
	dropped  atomic.Uint64
}

// NewRing creates a ring holding at least capacity events.
func NewRing(capacity int) *Ring {
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}
	return &Ring{
		events: make([]Event, size),
		mask:   size - 1,
	}
}

// TryPush appends an event, reporting false (and counting the drop) when
// the ring is full. Never blocks.
func (r *Ring) TryPush(e Event) bool {
	writePos := r.writePos.Load()
	readPos := r.readPos.Load()
	if writePos-readPos >= uint64(len(r.events)) {
		r.dropped.Add(1)
		return false
	}
	r.events[writePos&r.mask] = e
	r.writePos.Store(writePos + 1)
	return true
}

// TryPop removes the oldest event. Never blocks.
func (r *Ring) TryPop() (Event, bool) {
	readPos := r.readPos.Load()
	if r.writePos.Load() == readPos {
		return Event{}, false
	}
	e := r.events[readPos&r.mask]
	r.readPos.Store(readPos + 1)
	return e, true
}

// Dropped returns how many events were discarded on a full ring.
func (r *Ring) Dropped() uint64 {
	return r.dropped.Load()
}
