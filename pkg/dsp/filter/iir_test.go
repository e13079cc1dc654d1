package filter

import (
	"math"
	"testing"
)

func TestIIRPassthruIdentity(t *testing.T) {
	f := IIRPassthru(256)
	input := randomSignal(256, 10)
	output := make([]float32, 256)
	f.Apply(input, output)

	for i := range input {
		if diff := math.Abs(float64(output[i] - input[i])); diff > 1e-6 {
			t.Fatalf("sample %d: got %f, want %f", i, output[i], input[i])
		}
	}
}

func TestIIRCarryContinuity(t *testing.T) {
	const total = 2048
	signal := randomSignal(total, 11)

	reference := IIRLowPass(2000, 48000, total)
	want := make([]float32, total)
	reference.Apply(signal, want)

	for _, blockSize := range []int{64, 128, 256} {
		f := IIRLowPass(2000, 48000, blockSize)
		got := make([]float32, total)
		for off := 0; off < total; off += blockSize {
			f.Apply(signal[off:off+blockSize], got[off:off+blockSize])
		}
		for i := range want {
			if diff := math.Abs(float64(got[i] - want[i])); diff > 1e-4 {
				t.Fatalf("block size %d, sample %d: got %f, want %f",
					blockSize, i, got[i], want[i])
			}
		}
	}
}

func TestIIRAdditiveOutput(t *testing.T) {
	// Apply must add into output, leaving existing content in place.
	f := IIRPassthru(64)
	input := make([]float32, 64)
	output := make([]float32, 64)
	for i := range input {
		input[i] = 0.25
		output[i] = 1.0
	}
	f.Apply(input, output)

	for i := range output {
		if diff := math.Abs(float64(output[i] - 1.25)); diff > 1e-6 {
			t.Fatalf("sample %d: got %f, want 1.25", i, output[i])
		}
	}
}

func TestIIRSetGainIdempotent(t *testing.T) {
	f := IIRLowPass(2000, 48000, 64)
	f.SetGain(0.8)
	in1 := append([]float32(nil), f.inWeights...)
	out1 := append([]float32(nil), f.outWeights...)
	f.SetGain(0.8)

	for i := range in1 {
		if f.inWeights[i] != in1[i] {
			t.Fatalf("in weight %d drifted", i)
		}
	}
	for i := range out1 {
		if f.outWeights[i] != out1[i] {
			t.Fatalf("out weight %d drifted", i)
		}
	}
}

func TestIIRWeightContract(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for mismatched weight lengths")
		}
	}()
	NewIIR([]float32{1, 0}, []float32{0, 0}, 64)
}

func TestIIRBandPassContract(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for highCutoff <= lowCutoff")
		}
	}()
	IIRBandPass(2000, 1000, 48000, 64)
}

func TestIIRShortBlockPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for block shorter than filter")
		}
	}()
	f := IIRBandPass(500, 2000, 48000, 64)
	f.Apply(make([]float32, 2), make([]float32, 2))
}
