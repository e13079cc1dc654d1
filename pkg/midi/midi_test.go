package midi

import (
	"math"
	"testing"
)

func TestDecodeControlChange(t *testing.T) {
	// CC 77 value 100 on channel 2
	ev, ok := Decode([]byte{0xB2, 77, 100})
	if !ok {
		t.Fatal("control change not decoded")
	}
	want := Event{Channel: 2, Kind: KindController, Number: 77, Value: 100}
	if ev != want {
		t.Fatalf("got %+v, want %+v", ev, want)
	}
}

func TestDecodeNoteOn(t *testing.T) {
	ev, ok := Decode([]byte{0x90, 60, 127})
	if !ok {
		t.Fatal("note on not decoded")
	}
	want := Event{Channel: 0, Kind: KindNote, Number: 60, Value: 127}
	if ev != want {
		t.Fatalf("got %+v, want %+v", ev, want)
	}
}

func TestDecodeIgnoresOthers(t *testing.T) {
	for _, raw := range [][]byte{
		{0x80, 60, 0},       // note off
		{0xE0, 0x00, 0x40},  // pitch bend
		{0xC0, 5},           // program change
		{0xF8},              // clock
	} {
		if _, ok := Decode(raw); ok {
			t.Errorf("unexpected decode of % X", raw)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(0); got != 0 {
		t.Errorf("Normalize(0) = %f", got)
	}
	if got := Normalize(127); got != 1 {
		t.Errorf("Normalize(127) = %f", got)
	}
	if got := Normalize(64); math.Abs(got-64.0/127) > 1e-12 {
		t.Errorf("Normalize(64) = %f", got)
	}
}

func TestLookupResolve(t *testing.T) {
	l := NewLookup()
	l.Bind(Controller(0, 77), Effect{Channel: 3, Kind: EffectGain})
	l.Bind(Note(8, 41), Effect{Channel: 1, Kind: EffectHighGain})

	if eff, ok := l.Resolve(Controller(0, 77)); !ok || eff.Channel != 3 || eff.Kind != EffectGain {
		t.Errorf("controller binding: got %+v, %v", eff, ok)
	}
	if eff, ok := l.Resolve(Note(8, 41)); !ok || eff.Kind != EffectHighGain {
		t.Errorf("note binding: got %+v, %v", eff, ok)
	}
	if _, ok := l.Resolve(Controller(1, 77)); ok {
		t.Error("resolved an unbound key")
	}
}

func TestRingPushPop(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 3; i++ {
		if !r.TryPush(Event{Number: uint8(i)}) {
			t.Fatalf("push %d failed", i)
		}
	}
	for i := 0; i < 3; i++ {
		ev, ok := r.TryPop()
		if !ok || ev.Number != uint8(i) {
			t.Fatalf("pop %d: got %+v, %v", i, ev, ok)
		}
	}
	if _, ok := r.TryPop(); ok {
		t.Error("pop succeeded on empty ring")
	}
}

func TestRingDropsWhenFull(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 4; i++ {
		r.TryPush(Event{})
	}
	if r.TryPush(Event{}) {
		t.Fatal("push succeeded on full ring")
	}
	if r.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", r.Dropped())
	}
}
