// Package filter provides the FIR and IIR filters used by the mixer's
// per-channel filter bank.
//
// Both filter types share the same Apply contract: output from a filter is
// added into the output slice, so several filters can be combined
// additively (equivalent to running them in parallel and summing). Block
// convolution is split into three phases - the head, which only receives
// carry-over from the previous block, the middle, where the whole kernel
// fits inside the block, and the tail, whose overhang is stashed in a
// carry buffer for the next block.
package filter

import (
	"math"

	"github.com/mixdeck/mixdeck/pkg/dsp"
)

// Effect is the common contract for block filters. Apply adds the filtered
// input into output; it never allocates and must be called with
// len(input) == len(output).
type Effect interface {
	Apply(input, output []float32)
	SetGain(gain float64)
}

// FIR is a finite impulse response filter with an inter-block carry buffer.
// Weights are kept twice: the original design weights and the working set
// scaled by the current gain.
type FIR struct {
	weights  []float32
	original []float32
	carry    []float32
	gain     float64
}

// NewFIR wraps a raw kernel in a filter. The carry buffer holds the tail
// response that crosses the block boundary, so its length is len-1.
func NewFIR(weights []float32) *FIR {
	original := make([]float32, len(weights))
	copy(original, weights)
	working := make([]float32, len(weights))
	copy(working, weights)
	return &FIR{
		weights:  working,
		original: original,
		carry:    make([]float32, len(weights)-1),
		gain:     1.0,
	}
}

// Passthru returns a filter that leaves the signal untouched.
func Passthru() *FIR {
	return NewFIR([]float32{1})
}

// LowPass designs a windowed-sinc low-pass kernel using the Blackman
// window. Even lengths are incremented so the kernel has a center tap.
func LowPass(cutoff, sampleRate float32, length int) *FIR {
	if length%2 == 0 {
		length++
	}
	weights := make([]float32, length)

	fc := float64(cutoff / sampleRate)
	angular := 2 * math.Pi * fc
	middle := length / 2

	for i := -middle; i <= middle; i++ {
		if i == 0 {
			weights[middle] = float32(2 * fc)
		} else {
			bman := dsp.Blackman(length, i+middle)
			weights[i+middle] = bman * float32(math.Sin(angular*float64(i))/(math.Pi*float64(i)))
		}
	}
	return NewFIR(weights)
}

// HighPass designs a windowed-sinc high-pass kernel.
func HighPass(cutoff, sampleRate float32, length int) *FIR {
	if length%2 == 0 {
		length++
	}
	weights := make([]float32, length)

	fc := float64(cutoff / sampleRate)
	angular := 2 * math.Pi * fc
	middle := length / 2

	for i := -middle; i <= middle; i++ {
		if i == 0 {
			weights[middle] = float32(1 - 2*fc)
		} else {
			bman := dsp.Blackman(length, i+middle)
			weights[i+middle] = -bman * float32(math.Sin(angular*float64(i))/(math.Pi*float64(i)))
		}
	}
	return NewFIR(weights)
}

// BandPass designs a windowed-sinc band-pass kernel as the difference of
// two sinc responses. Construction with highCutoff <= lowCutoff is a
// contract violation.
func BandPass(lowCutoff, highCutoff, sampleRate float32, length int) *FIR {
	if highCutoff <= lowCutoff {
		panic("filter: band-pass requires highCutoff > lowCutoff")
	}
	if length%2 == 0 {
		length++
	}
	weights := make([]float32, length)

	lo := float64(lowCutoff / sampleRate)
	hi := float64(highCutoff / sampleRate)
	loAngular := 2 * math.Pi * lo
	hiAngular := 2 * math.Pi * hi
	middle := length / 2

	for i := -middle; i <= middle; i++ {
		if i == 0 {
			weights[middle] = float32(1 - 2*(hi-lo))
		} else {
			bman := dsp.Blackman(length, i+middle)
			fi := float64(i)
			weight := math.Sin(hiAngular*fi)/(math.Pi*fi) - math.Sin(loAngular*fi)/(math.Pi*fi)
			weights[i+middle] = float32(weight) * bman
		}
	}
	return NewFIR(weights)
}

// Len returns the kernel length.
func (f *FIR) Len() int {
	return len(f.weights)
}

// SetGain rescales the working weights from the original kernel. Setting
// the cached gain again is a no-op, so per-block calls cost nothing when
// the fader has not moved.
func (f *FIR) SetGain(gain float64) {
	if gain == f.gain {
		return
	}
	g := float32(gain)
	for i, orig := range f.original {
		f.weights[i] = orig * g
	}
	f.gain = gain
}

// Weights returns a copy of the working weights, for inspection in tests.
func (f *FIR) Weights() []float32 {
	out := make([]float32, len(f.weights))
	copy(out, f.weights)
	return out
}

// Apply convolves input with the kernel, adding the result into output.
// The block must be at least as long as the kernel; a shorter block would
// drop carry contributions spanning more than one boundary and silently
// corrupt the filter state.
func (f *FIR) Apply(input, output []float32) {
	if len(input) != len(output) {
		panic("filter: input and output length mismatch")
	}
	if len(input) < len(f.weights) {
		panic("filter: block shorter than the kernel")
	}

	n := len(f.weights)
	blockLen := len(input)

	// Head: contributions carried over from the previous block.
	for i := 0; i < len(f.carry) && i < blockLen; i++ {
		output[i] += f.carry[i]
	}

	// Middle: the kernel fits entirely inside this block.
	for inputIdx := 0; inputIdx < blockLen-n; inputIdx++ {
		sampleIn := input[inputIdx]
		if sampleIn == 0 {
			continue
		}
		for k, weight := range f.weights {
			output[inputIdx+k] += sampleIn * weight
		}
	}

	// Tail: split contributions between this block and the carry buffer.
	dsp.Clear(f.carry)
	start := blockLen - n
	if start < 0 {
		start = 0
	}
	for inputIdx := start; inputIdx < blockLen; inputIdx++ {
		sampleIn := input[inputIdx]
		if sampleIn == 0 {
			continue
		}
		idx := 0
		for ; idx < blockLen-inputIdx && idx < n; idx++ {
			output[inputIdx+idx] += sampleIn * f.weights[idx]
		}
		for ; idx < n; idx++ {
			f.carry[idx-(blockLen-inputIdx)] += sampleIn * f.weights[idx]
		}
	}
}
