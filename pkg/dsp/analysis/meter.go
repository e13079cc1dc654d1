// Package analysis provides level metering for the mixer's channels.
package analysis

import "math"

// Metering is a flushed snapshot of one channel's levels over a metering
// interval.
type Metering struct {
	MaxIn  float64
	RMSIn  float64
	MaxOut float64
	RMSOut float64
}

// MeterAcc accumulates peak and sum-of-squares for a channel's input and
// output streams between metering flushes. It is owned by the realtime
// thread and needs no locking; snapshots leave as messages.
type MeterAcc struct {
	sumSqIn  float32
	maxIn    float32
	sumSqOut float32
	maxOut   float32
}

// SampleIn records one input sample.
func (m *MeterAcc) SampleIn(v float32) {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs > m.maxIn {
		m.maxIn = abs
	}
	m.sumSqIn += v * v
}

// SampleOut records one output sample.
func (m *MeterAcc) SampleOut(v float32) {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs > m.maxOut {
		m.maxOut = abs
	}
	m.sumSqOut += v * v
}

// Snapshot converts the accumulated values to a Metering over sampleCount
// samples.
func (m *MeterAcc) Snapshot(sampleCount int) Metering {
	n := float64(sampleCount)
	return Metering{
		MaxIn:  float64(m.maxIn),
		RMSIn:  math.Sqrt(float64(m.sumSqIn) / n),
		MaxOut: float64(m.maxOut),
		RMSOut: math.Sqrt(float64(m.sumSqOut) / n),
	}
}

// Clear resets the accumulator for the next metering interval.
func (m *MeterAcc) Clear() {
	m.sumSqIn = 0
	m.maxIn = 0
	m.sumSqOut = 0
	m.maxOut = 0
}

// FlushInterval returns how many blocks to accumulate before flushing so
// the UI sees roughly 60 updates per second regardless of the block size
// the driver picked.
func FlushInterval(sampleRate float64, blockSize int) int {
	blocks := int(math.Floor(sampleRate / float64(blockSize) / 60))
	if blocks < 1 {
		blocks = 1
	}
	return blocks
}
