package monitor

import (
	"testing"
	"time"
)

func TestSlotDeliversUpdates(t *testing.T) {
	s := NewSlot(0)

	got := make(chan int, 1)
	go s.OnChanged(func(v int) {
		select {
		case got <- v:
		default:
		}
	})

	for !s.Update(func(v *int) { *v = 42 }) {
	}

	select {
	case v := <-got:
		if v != 42 {
			t.Fatalf("consumer saw %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer never woke")
	}
	s.Shutdown()
}

func TestSlotShutdownReleasesConsumer(t *testing.T) {
	s := NewSlot(0)

	done := make(chan struct{})
	go func() {
		s.OnChanged(func(int) {})
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnChanged did not return after Shutdown")
	}
}

// The producer side must return immediately even while the consumer holds
// the lock inside its callback.
func TestSlotProducerNeverBlocks(t *testing.T) {
	s := NewSlot(0)

	inCallback := make(chan struct{})
	release := make(chan struct{})
	go s.OnChanged(func(int) {
		close(inCallback)
		<-release
	})

	// Trigger the consumer and wait until it is parked in the callback
	// with the lock held.
	for !s.Update(func(v *int) { *v = 1 }) {
	}
	<-inCallback

	dropped := 0
	for i := 0; i < 10000; i++ {
		start := time.Now()
		ok := s.Update(func(v *int) { *v++ })
		if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
			t.Fatalf("update %d took %v, producer must not block", i, elapsed)
		}
		if !ok {
			dropped++
		}
	}
	if dropped == 0 {
		t.Error("expected contended updates to be dropped")
	}

	close(release)
	s.Shutdown()
}
