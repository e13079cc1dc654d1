// Package dsp provides the block-level signal processing primitives shared
// by the filter bank, the spectral engine and the realtime mixer callback.
package dsp

import "math"

// Buffer helpers. All of these operate on caller-owned slices and are safe
// to call from the realtime thread - no allocations.

// Clear zeroes a buffer.
func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

// Add adds source into destination sample by sample.
func Add(dst, src []float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
}

// Scale multiplies a buffer by a constant.
func Scale(buffer []float32, scale float32) {
	for i := range buffer {
		buffer[i] *= scale
	}
}

// Peak finds the maximum absolute value in a buffer.
func Peak(buffer []float32) float32 {
	peak := float32(0)
	for _, sample := range buffer {
		abs := float32(math.Abs(float64(sample)))
		if abs > peak {
			peak = abs
		}
	}
	return peak
}

// RMS calculates the root mean square of a buffer.
func RMS(buffer []float32) float32 {
	if len(buffer) == 0 {
		return 0
	}
	sum := float32(0)
	for _, sample := range buffer {
		sum += sample * sample
	}
	return float32(math.Sqrt(float64(sum / float32(len(buffer)))))
}
