package spectral

import "testing"

func TestRingWriteRead(t *testing.T) {
	r := NewRing(16)

	if err := r.Write([]float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := r.Readable(); got != 4 {
		t.Fatalf("readable = %d, want 4", got)
	}

	dst := make([]float32, 4)
	if !r.TryRead(dst) {
		t.Fatal("read failed with data available")
	}
	for i, want := range []float32{1, 2, 3, 4} {
		if dst[i] != want {
			t.Errorf("sample %d: got %f, want %f", i, dst[i], want)
		}
	}
}

func TestRingAllOrNothing(t *testing.T) {
	r := NewRing(8)
	r.Write([]float32{1, 2, 3})

	dst := make([]float32, 4)
	if r.TryRead(dst) {
		t.Fatal("read succeeded with too little data")
	}
	if got := r.Readable(); got != 3 {
		t.Fatalf("failed read consumed data: readable = %d, want 3", got)
	}
}

func TestRingFull(t *testing.T) {
	r := NewRing(8)
	block := make([]float32, 8)

	if err := r.Write(block); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := r.Write([]float32{1}); err != ErrRingFull {
		t.Fatalf("expected ErrRingFull, got %v", err)
	}

	// Rejected writes leave the contents intact.
	if got := r.Readable(); got != 8 {
		t.Fatalf("readable = %d, want 8", got)
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing(8)
	dst := make([]float32, 6)

	for pass := 0; pass < 10; pass++ {
		in := make([]float32, 6)
		for i := range in {
			in[i] = float32(pass*6 + i)
		}
		if err := r.Write(in); err != nil {
			t.Fatalf("pass %d: write failed: %v", pass, err)
		}
		if !r.TryRead(dst) {
			t.Fatalf("pass %d: read failed", pass)
		}
		for i := range dst {
			if dst[i] != in[i] {
				t.Fatalf("pass %d sample %d: got %f, want %f", pass, i, dst[i], in[i])
			}
		}
	}
}
