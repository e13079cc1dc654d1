package main

import (
	"sync"
	"testing"
	"time"

	"github.com/mixdeck/mixdeck/pkg/config"
	"github.com/mixdeck/mixdeck/pkg/mixer"
)

func testChannelConfig() *config.Config {
	return &config.Config{Channels: []config.Channel{{Name: "main"}}}
}

// A spectrum message must own its bins: once delivered, further engine
// blocks may not mutate it behind the consumer's back.
func TestDeliveredSpectrumOwnsItsBins(t *testing.T) {
	ui := make(chan mixer.UiMsg, 256)
	control := make(chan mixer.AudioMsg, 4)
	engine, err := mixer.NewEngine(mixer.Params{
		Config:         testChannelConfig(),
		SampleRate:     48000,
		BlockSize:      256,
		UI:             ui,
		ControlIn:      control,
		Spectral:       true,
		SpectralFFTLen: 512,
		PublishSpectra: true,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	control <- mixer.GainMsg(0, 1)

	var consumers sync.WaitGroup
	startSpectrumConsumers(engine, ui, &consumers)

	in := [][]float32{make([]float32, 256)}
	out := [][]float32{make([]float32, 256)}
	for i := range in[0] {
		in[0][i] = 0.5
	}

	for i := 0; i < 16; i++ {
		engine.Process(in, out)
	}

	var msg mixer.UiMsg
	timeout := time.After(2 * time.Second)
	for msg.Kind != mixer.UiAudioInSpectrum {
		select {
		case m := <-ui:
			if m.Kind == mixer.UiAudioInSpectrum {
				msg = m
			}
		case <-timeout:
			t.Fatal("no input spectrum delivered")
		}
	}
	snapshot := append([]float32(nil), msg.Spectrum...)

	for i := 0; i < 100; i++ {
		engine.Process(in, out)
	}

	var mutated int
	for i := range snapshot {
		if msg.Spectrum[i] != snapshot[i] {
			mutated++
		}
	}
	if mutated > 0 {
		t.Errorf("delivered spectrum mutated after delivery in %d/%d bins", mutated, len(snapshot))
	}

	engine.Shutdown()
	consumers.Wait()
}
