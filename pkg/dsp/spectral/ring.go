package spectral

import (
	"errors"
	"sync/atomic"
)

// ErrRingFull is returned by Write when the buffer cannot hold the block.
var ErrRingFull = errors.New("spectral: ring buffer full")

// Ring is a single-producer single-consumer circular sample buffer with
// atomic positions, sized up to a power of two so wrapping is a mask.
type Ring struct {
	data     []float32
	readPos  atomic.Uint64
	writePos atomic.Uint64
	mask     uint64
}

// NewRing creates a ring holding at least capacity samples.
func NewRing(capacity int) *Ring {
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}
	return &Ring{
		data: make([]float32, size),
		mask: size - 1,
	}
}

// Cap returns the usable capacity in samples.
func (r *Ring) Cap() int {
	return len(r.data)
}

// Readable returns the number of unread samples.
func (r *Ring) Readable() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// Write appends samples. It never blocks; if there is not enough space the
// whole block is rejected with ErrRingFull.
func (r *Ring) Write(samples []float32) error {
	writePos := r.writePos.Load()
	readPos := r.readPos.Load()
	if uint64(len(r.data))-(writePos-readPos) < uint64(len(samples)) {
		return ErrRingFull
	}
	for _, s := range samples {
		r.data[writePos&r.mask] = s
		writePos++
	}
	r.writePos.Store(writePos)
	return nil
}

// TryRead fills dst with the oldest samples and consumes them. It reads
// all of dst or nothing, returning whether it read.
func (r *Ring) TryRead(dst []float32) bool {
	readPos := r.readPos.Load()
	writePos := r.writePos.Load()
	if writePos-readPos < uint64(len(dst)) {
		return false
	}
	for i := range dst {
		dst[i] = r.data[readPos&r.mask]
		readPos++
	}
	r.readPos.Store(readPos)
	return true
}
