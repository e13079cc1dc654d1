package spectral

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/mixdeck/mixdeck/pkg/dsp"
	"github.com/mixdeck/mixdeck/pkg/monitor"
)

// Engine is a windowed overlap-add frequency-domain processor. Input
// samples stream in through a ring buffer; whenever a full hop of new
// samples is available the engine windows the analysis frame, transforms
// it, optionally publishes the spectrum, applies the frequency-domain
// filter hook, resynthesizes, and accumulates the result into an
// overlap-add buffer whose head is flushed to the output ring.
//
// The design follows freqtweak-style spectral processing: with oversample
// factor o, consecutive analysis frames overlap by fftLen-fftLen/o
// samples and the engine's latency is exactly that overlap.
type Engine struct {
	oversample int
	inGain     float32
	fftLen     int

	// sliding analysis window of the last fftLen input samples
	input  []float32
	window []float32

	fft     *fourier.FFT
	scratch []float64    // windowed frame, float64 for the FFT
	seq     []float64    // inverse transform output
	coeffs  []complex128 // n/2+1 Fourier coefficients
	hc      []float32    // half-complex spectrum
	mag     []float32    // magnitude scratch, n/2+1

	outputAccum []float32

	// precomputed half-complex spectrum of the low-pass kernel, applied
	// when filtering is enabled
	filterHC []float32
	filterOn bool

	inSpectrum  *monitor.Slot[[]float32]
	outSpectrum *monitor.Slot[[]float32]
}

// NewEngine builds an engine with a Blackman analysis window and an
// oversample factor of 4. The sample rate parameterizes the precomputed
// low-pass filter spectrum available through the processing hook.
func NewEngine(sampleRate float32, fftLen int) *Engine {
	window := make([]float32, fftLen)
	for i := range window {
		window[i] = dsp.Blackman(fftLen, i)
	}

	kernel := make([]float32, fftLen)
	LowPassKernel(800, sampleRate, kernel)

	e := &Engine{
		oversample:  4,
		inGain:      1.0,
		fftLen:      fftLen,
		input:       make([]float32, fftLen),
		window:      window,
		fft:         fourier.NewFFT(fftLen),
		scratch:     make([]float64, fftLen),
		seq:         make([]float64, fftLen),
		coeffs:      make([]complex128, fftLen/2+1),
		hc:          make([]float32, fftLen),
		mag:         make([]float32, fftLen/2+1),
		outputAccum: make([]float32, fftLen),
		filterHC:    spectrum(kernel),
		inSpectrum:  monitor.NewSlot(make([]float32, fftLen)),
		outSpectrum: monitor.NewSlot(make([]float32, fftLen/2+1)),
	}
	return e
}

// StepSize returns the hop size in samples.
func (e *Engine) StepSize() int {
	return e.fftLen / e.oversample
}

// Latency returns the fixed processing delay in samples, fftLen minus the
// hop size. Callers use it to time-align input and output spectra.
func (e *Engine) Latency() int {
	return e.fftLen - e.StepSize()
}

// SetInputGain scales the signal ahead of the analysis window.
func (e *Engine) SetInputGain(gain float32) {
	e.inGain = gain
}

// EnableFilter switches the frequency-domain low-pass hook on or off.
func (e *Engine) EnableFilter(on bool) {
	e.filterOn = on
}

// FilterMagnitude returns the magnitude spectrum of the precomputed
// frequency-domain filter. Allocates; setup/UI use only.
func (e *Engine) FilterMagnitude() []float32 {
	return HCToMagnitude(e.filterHC)
}

// Spectra returns the input and output monitor slots. The input slot
// carries the raw half-complex spectrum, the output slot bin magnitudes.
func (e *Engine) Spectra() (in, out *monitor.Slot[[]float32]) {
	return e.inSpectrum, e.outSpectrum
}

// Shutdown releases any consumers blocked on the spectrum slots.
func (e *Engine) Shutdown() {
	e.inSpectrum.Shutdown()
	e.outSpectrum.Shutdown()
}

// Process runs as many analysis/resynthesis passes as the input ring
// allows, emitting one hop of output per pass. When publishSpectra is set
// the pre- and post-processing spectra are offered to the monitor slots.
// Never allocates and never blocks.
func (e *Engine) Process(in, out *Ring, publishSpectra bool) {
	latency := e.Latency()
	step := e.StepSize()

	for in.TryRead(e.input[latency:]) {
		for i, s := range e.input {
			e.scratch[i] = float64(s * e.window[i] * e.inGain)
		}
		e.fft.Coefficients(e.coeffs, e.scratch)
		packHC(e.coeffs, e.hc)

		if publishSpectra {
			e.inSpectrum.Update(func(v *[]float32) {
				copy(*v, e.hc)
			})
		}

		if e.filterOn {
			HCMultiply(e.filterHC, e.hc)
		}

		if publishSpectra {
			HCMagnitude(e.hc, e.mag)
			e.outSpectrum.Update(func(v *[]float32) {
				copy(*v, e.mag)
			})
		}

		unpackHC(e.hc, e.coeffs)
		e.fft.Sequence(e.seq, e.coeffs)

		// Window again and normalize by fftLen (the transform pair is
		// unnormalized), accumulating into the overlap-add buffer.
		norm := 1 / float32(e.fftLen)
		for i := range e.outputAccum {
			e.outputAccum[i] += float32(e.seq[i]) * e.window[i] * norm
		}

		// A full output ring means the consumer fell behind; drop the hop
		// rather than block.
		_ = out.Write(e.outputAccum[:step])

		// Shift the overlap-add accumulator and the analysis window back
		// by one hop.
		copy(e.outputAccum, e.outputAccum[step:])
		dsp.Clear(e.outputAccum[e.fftLen-step:])
		copy(e.input, e.input[step:])
	}
}
