// Package spectral implements windowed overlap-add frequency-domain
// processing on top of a real-to-half-complex FFT.
//
// The half-complex layout is the FFTW r2hc packing: for an n-point
// spectrum, index 0 is the DC bin, indices 1..n/2 are the real parts and
// indices n-1 down to n/2+1 the mirrored imaginary parts of the positive
// frequency bins. DC and, for even n, the Nyquist bin are purely real.
package spectral

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/mixdeck/mixdeck/pkg/dsp"
)

// HCMultiply multiplies two equal-length half-complex spectra pointwise,
// storing the result in data. DC and Nyquist bins are real multiplies;
// every other bin uses the paired complex product.
func HCMultiply(params, data []float32) {
	if len(params) != len(data) {
		panic("spectral: half-complex length mismatch")
	}
	n := len(params)
	if n == 0 {
		return
	}

	data[0] *= params[0]
	if n > 1 {
		for i := 1; i <= (n-1)/2; i++ {
			pre := params[i]
			ire := data[i]
			pim := params[n-i]
			iim := data[n-i]
			data[i] = pre*ire - pim*iim
			data[n-i] = pre*iim + ire*pim
		}
		if n%2 == 0 {
			data[n/2] *= params[n/2]
		}
	}
}

// HCMagnitude converts a half-complex spectrum to bin magnitudes. out must
// have length len(data)/2+1.
//
// For odd lengths the top bin has no imaginary partner in this packing and
// reports 0, so [1,1,1] maps to [1,0]. Odd lengths never occur on the
// engine path, which only builds power-of-two analysis windows.
func HCMagnitude(data, out []float32) {
	if len(data)/2+1 != len(out) {
		panic("spectral: magnitude length mismatch")
	}
	n := len(data)
	if n == 0 {
		return
	}

	out[0] = float32(math.Abs(float64(data[0])))
	if n > 1 {
		for i := 1; i < n/2; i++ {
			re := float64(data[i])
			im := float64(data[n-i])
			out[i] = float32(math.Sqrt(re*re + im*im))
		}
		if n%2 == 0 {
			out[n/2] = float32(math.Abs(float64(data[n/2])))
		} else {
			out[n/2] = 0
		}
	}
}

// HCToMagnitude is the allocating convenience form of HCMagnitude. Not for
// use on the realtime path.
func HCToMagnitude(data []float32) []float32 {
	out := make([]float32, len(data)/2+1)
	HCMagnitude(data, out)
	return out
}

// packHC converts n/2+1 complex Fourier coefficients into the half-complex
// layout described above.
func packHC(coeffs []complex128, hc []float32) {
	n := len(hc)
	hc[0] = float32(real(coeffs[0]))
	for i := 1; i <= (n-1)/2; i++ {
		hc[i] = float32(real(coeffs[i]))
		hc[n-i] = float32(imag(coeffs[i]))
	}
	if n%2 == 0 && n > 1 {
		hc[n/2] = float32(real(coeffs[n/2]))
	}
}

// unpackHC is the inverse of packHC.
func unpackHC(hc []float32, coeffs []complex128) {
	n := len(hc)
	coeffs[0] = complex(float64(hc[0]), 0)
	for i := 1; i <= (n-1)/2; i++ {
		coeffs[i] = complex(float64(hc[i]), float64(hc[n-i]))
	}
	if n%2 == 0 && n > 1 {
		coeffs[n/2] = complex(float64(hc[n/2]), 0)
	}
}

// LowPassKernel fills buf with a windowed-sinc low-pass convolution kernel
// sized to the analysis window, used to precompute the engine's
// frequency-domain filter spectrum.
func LowPassKernel(cutoff, sampleRate float32, buf []float32) {
	n := len(buf)
	middle := (float64(n) + 1) * 0.5

	fc := float64(cutoff / sampleRate)
	angular := 2 * math.Pi * fc

	for i := 0; i < n; i++ {
		if float64(i) == middle {
			buf[i] = float32(2 * fc)
		} else {
			fi := float64(i) - middle
			bman := dsp.Blackman(n, i)
			buf[i] = bman * float32(math.Sin(angular*fi)/(math.Pi*fi))
		}
	}
}

// spectrum computes the half-complex spectrum of a real kernel using a
// scratch FFT, for setup-time filter preparation.
func spectrum(kernel []float32) []float32 {
	n := len(kernel)
	fft := fourier.NewFFT(n)
	in := make([]float64, n)
	for i, v := range kernel {
		in[i] = float64(v)
	}
	coeffs := fft.Coefficients(nil, in)
	hc := make([]float32, n)
	packHC(coeffs, hc)
	return hc
}
