package filter

import (
	"math"

	"github.com/mixdeck/mixdeck/pkg/dsp"
)

// IIR is a recursive filter with feed-forward weights (inWeights, one more
// tap than the feedback set) and feedback weights (outWeights). Because a
// sample's output feeds later samples in the same block, Apply evaluates
// strictly left to right; it is not parallelizable within a block.
type IIR struct {
	inWeights   []float32
	inOriginal  []float32
	outWeights  []float32
	outOriginal []float32
	carry       []float32
	scratch     []float32
	gain        float64
}

// NewIIR builds a recursive filter. len(inWeights) must be
// len(outWeights)+1: the current output depends on the current input plus
// a number of previous inputs and outputs. frameLen sizes the internal
// scratch buffer; applying the filter to longer blocks reallocates it.
func NewIIR(inWeights, outWeights []float32, frameLen int) *IIR {
	if len(inWeights) != len(outWeights)+1 {
		panic("filter: IIR needs len(inWeights) == len(outWeights)+1")
	}
	inOrig := make([]float32, len(inWeights))
	copy(inOrig, inWeights)
	inWork := make([]float32, len(inWeights))
	copy(inWork, inWeights)
	outOrig := make([]float32, len(outWeights))
	copy(outOrig, outWeights)
	outWork := make([]float32, len(outWeights))
	copy(outWork, outWeights)
	return &IIR{
		inWeights:   inWork,
		inOriginal:  inOrig,
		outWeights:  outWork,
		outOriginal: outOrig,
		carry:       make([]float32, len(outWeights)),
		scratch:     make([]float32, frameLen),
		gain:        1.0,
	}
}

// SinglePole builds a one-pole recursive filter from raw coefficients.
func SinglePole(a0, a1, b1 float32, frameLen int) *IIR {
	return NewIIR([]float32{a0, a1}, []float32{b1}, frameLen)
}

// IIRLowPass builds a single-pole low-pass filter by pole placement.
func IIRLowPass(cutoff, sampleRate float32, frameLen int) *IIR {
	fc := float64(cutoff / sampleRate)
	x := float32(math.Exp(-2 * math.Pi * fc))
	return SinglePole(1-x, 0, x, frameLen)
}

// IIRHighPass builds a single-pole high-pass filter.
func IIRHighPass(cutoff, sampleRate float32, frameLen int) *IIR {
	fc := float64(cutoff / sampleRate)
	x := float32(math.Exp(-2 * math.Pi * fc))
	return SinglePole(0.5*(1+x), -0.5*(1+x), x, frameLen)
}

// IIRBandPass builds a two-pole band-pass filter from the band edges.
// highCutoff must be greater than lowCutoff.
func IIRBandPass(lowCutoff, highCutoff, sampleRate float32, frameLen int) *IIR {
	if highCutoff <= lowCutoff {
		panic("filter: band-pass requires highCutoff > lowCutoff")
	}
	lo := float64(lowCutoff / sampleRate)
	hi := float64(highCutoff / sampleRate)
	mid := (lo + hi) * 0.5
	bandwidth := hi - lo
	angularMid := 2 * math.Pi * mid
	r := 1 - 3*bandwidth
	k := (1 - 2*r*math.Cos(angularMid) + r*r) / (2 - 2*math.Cos(angularMid))

	inWeights := []float32{
		float32(k),
		float32(2 * (k - r) * math.Cos(angularMid)),
		float32(r*r - k),
	}
	outWeights := []float32{
		float32(2 * r * math.Cos(angularMid)),
		float32(-r * r),
	}
	return NewIIR(inWeights, outWeights, frameLen)
}

// IIRPassthru returns a recursive filter that does not affect the signal.
func IIRPassthru(frameLen int) *IIR {
	return SinglePole(1, 0, 0, frameLen)
}

// Len returns the feed-forward weight count.
func (f *IIR) Len() int {
	return len(f.inWeights)
}

// SetGain rescales both weight sets from the originals; a repeated gain is
// a no-op.
func (f *IIR) SetGain(gain float64) {
	if gain == f.gain {
		return
	}
	g := float32(gain)
	for i, orig := range f.inOriginal {
		f.inWeights[i] = orig * g
	}
	for i, orig := range f.outOriginal {
		f.outWeights[i] = orig * g
	}
	f.gain = gain
}

// Apply runs the filter over input, adding the result into output. The
// block must be longer than the filter.
func (f *IIR) Apply(input, output []float32) {
	if len(input) != len(output) {
		panic("filter: input and output length mismatch")
	}
	filterLen := len(f.inWeights)
	blockLen := len(input)
	if blockLen <= filterLen {
		panic("filter: IIR block must be longer than the filter")
	}

	// The scratch buffer holds this block's own response, kept separate
	// from output so the feedback path never sees other filters' samples.
	if len(f.scratch) != blockLen {
		f.scratch = make([]float32, blockLen)
	}
	dsp.Clear(f.scratch)

	// Head: pre-calculated contributions from the previous block.
	for i := range f.carry {
		f.scratch[i] += f.carry[i]
	}

	// Middle: all downstream contributions land inside this block.
	for idx := 0; idx < blockLen-filterLen; idx++ {
		sampleIn := input[idx]
		f.scratch[idx] += sampleIn * f.inWeights[0]
		sampleOut := f.scratch[idx]

		for contrib := 1; contrib < filterLen; contrib++ {
			f.scratch[idx+contrib] += sampleIn*f.inWeights[contrib] +
				sampleOut*f.outWeights[contrib-1]
		}
	}

	// Tail: split contributions between this block and the carry buffer.
	dsp.Clear(f.carry)
	for idx := blockLen - filterLen; idx < blockLen; idx++ {
		sampleIn := input[idx]
		f.scratch[idx] += sampleIn * f.inWeights[0]
		sampleOut := f.scratch[idx]

		contrib := idx + 1
		for ; contrib < blockLen; contrib++ {
			weightIdx := contrib - idx
			f.scratch[contrib] += sampleIn*f.inWeights[weightIdx] +
				sampleOut*f.outWeights[weightIdx-1]
		}
		for ; contrib-(idx+1) < filterLen-1; contrib++ {
			bufferIdx := contrib - (idx + 1)
			f.carry[bufferIdx] += sampleIn*f.inWeights[bufferIdx+1] +
				sampleOut*f.outWeights[bufferIdx]
		}
	}

	dsp.Add(output, f.scratch)
}
