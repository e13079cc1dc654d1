package dsp

import "math"

// Window functions used for FIR kernel design and spectral analysis.

// Blackman returns sample i of an m-point Blackman window.
//
// The window carries a 0.9 scale so that signal power is roughly equal
// before and after a full spectral analysis/resynthesis round trip, where
// the window is applied twice.
func Blackman(m, i int) float32 {
	const (
		alpha = 0.16
		a0    = (1 - alpha) * 0.5
		a1    = 0.5
		a2    = alpha * 0.5
	)
	r := float64(i) / float64(m)
	return float32((a0-a1*math.Cos(2*math.Pi*r)+a2*math.Cos(4*math.Pi*r)) * 0.9)
}

// Hamming returns sample i of an m-point Hamming window.
func Hamming(m, i int) float32 {
	r := float64(i) / float64(m)
	return float32(0.54 - 0.46*math.Cos(2*math.Pi*r))
}
