package spectral

import (
	"math"
	"math/rand"
	"testing"
)

func TestHCMultiplyFixtures(t *testing.T) {
	cases := []struct {
		params, input, want []float32
	}{
		{[]float32{1}, []float32{1}, []float32{1}},
		{[]float32{1, 1}, []float32{1, 1}, []float32{1, 1}},
		{[]float32{1, 1, 1}, []float32{1, 1, 1}, []float32{1, 0, 2}},
	}
	for _, c := range cases {
		data := append([]float32(nil), c.input...)
		HCMultiply(c.params, data)
		for i := range c.want {
			if data[i] != c.want[i] {
				t.Errorf("n=%d bin %d: got %f, want %f", len(c.input), i, data[i], c.want[i])
			}
		}
	}
}

func TestHCMagnitudeFixtures(t *testing.T) {
	cases := []struct {
		input, want []float32
	}{
		{[]float32{1}, []float32{1}},
		{[]float32{1, 1}, []float32{1, 1}},
		// n=3: bin 0 is |1|; the top bin of an odd-length spectrum has
		// no mirrored partner and reads as zero.
		{[]float32{1, 1, 1}, []float32{1, 0}},
		// n=5: same odd-length convention at the top bin, full pairs below.
		{[]float32{1, 1, 1, 1, 1}, []float32{1, float32(math.Sqrt2), 0}},
	}
	for _, c := range cases {
		got := HCToMagnitude(c.input)
		if len(got) != len(c.want) {
			t.Fatalf("n=%d: got %d bins, want %d", len(c.input), len(got), len(c.want))
		}
		for i := range c.want {
			if got[i] != c.want[i] {
				t.Errorf("n=%d bin %d: got %f, want %f", len(c.input), i, got[i], c.want[i])
			}
		}
	}
}

func TestHCPackUnpackRoundTrip(t *testing.T) {
	for _, n := range []int{4, 8, 16, 256} {
		rng := rand.New(rand.NewSource(int64(n)))
		hc := make([]float32, n)
		for i := range hc {
			hc[i] = float32(rng.Float64()*2 - 1)
		}

		coeffs := make([]complex128, n/2+1)
		unpackHC(hc, coeffs)
		back := make([]float32, n)
		packHC(coeffs, back)

		for i := range hc {
			if back[i] != hc[i] {
				t.Fatalf("n=%d index %d: got %f, want %f", n, i, back[i], hc[i])
			}
		}
	}
}

func TestHCMultiplyLengthContract(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mismatched lengths")
		}
	}()
	HCMultiply(make([]float32, 4), make([]float32, 8))
}
