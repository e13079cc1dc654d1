package mixer

import (
	"fmt"

	"github.com/mixdeck/mixdeck/pkg/config"
	"github.com/mixdeck/mixdeck/pkg/dsp"
	"github.com/mixdeck/mixdeck/pkg/dsp/analysis"
	"github.com/mixdeck/mixdeck/pkg/dsp/spectral"
	"github.com/mixdeck/mixdeck/pkg/midi"
	"github.com/mixdeck/mixdeck/pkg/monitor"
)

// Control is the engine's continue/quit signal back to the host.
type Control int

const (
	// Continue keeps the audio client running.
	Continue Control = iota
	// Quit asks the host to stop processing; the engine requests it when
	// a message endpoint disconnects.
	Quit
)

// Params configures an Engine. Config, SampleRate, BlockSize, UI and
// ControlIn are required; the rest have defaults.
type Params struct {
	Config     *config.Config
	SampleRate float64
	BlockSize  int

	// UI is the outbound message queue; sends never block and drop when
	// the queue is full. ControlIn carries UI-originated changes; the
	// engine treats its closure as the shutdown signal. Events is the
	// decoded control-surface queue and may be nil.
	UI        chan<- UiMsg
	ControlIn <-chan AudioMsg
	Events    *midi.Ring

	// Crossover frequencies and kernel length for the band filters.
	LowMidFreq   float32
	MidHighFreq  float32
	FilterLength int

	// Spectral routes normal-mode processing through a per-channel
	// overlap-add spectral engine instead of the FIR bank.
	Spectral       bool
	SpectralFFTLen int
	PublishSpectra bool
}

// Engine owns all state touched by the realtime callback. Everything it
// needs is allocated in NewEngine; Process itself never allocates, never
// takes a blocking lock, and never panics on data.
type Engine struct {
	state  State
	banks  []*Bank
	meters []analysis.MeterAcc
	lookup midi.Lookup

	ui        chan<- UiMsg
	controlIn <-chan AudioMsg
	events    *midi.Ring

	blockSize      int
	blocksPerFlush int
	blocksAcc      int

	spectralEngines []*spectral.Engine
	spectralIn      []*spectral.Ring
	spectralOut     []*spectral.Ring
	publishSpectra  bool

	droppedUiMsgs uint64
}

// NewEngine validates params and allocates the whole processing graph up
// front, so the callback path stays allocation free.
func NewEngine(p Params) (*Engine, error) {
	if p.Config == nil || len(p.Config.Channels) == 0 {
		return nil, fmt.Errorf("mixer: config with at least one channel required")
	}
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("mixer: invalid sample rate %f", p.SampleRate)
	}
	if p.BlockSize <= 0 {
		return nil, fmt.Errorf("mixer: invalid block size %d", p.BlockSize)
	}
	if p.UI == nil || p.ControlIn == nil {
		return nil, fmt.Errorf("mixer: UI and ControlIn queues required")
	}
	if p.LowMidFreq == 0 {
		p.LowMidFreq = 300
	}
	if p.MidHighFreq == 0 {
		p.MidHighFreq = 2000
	}
	if p.MidHighFreq <= p.LowMidFreq {
		return nil, fmt.Errorf("mixer: crossover %f..%f out of order", p.LowMidFreq, p.MidHighFreq)
	}
	if p.FilterLength == 0 {
		p.FilterLength = 101
	}
	if p.FilterLength%2 == 0 {
		// Kernel design forces odd lengths; account for it here so the
		// block-size check below sees the real kernel length.
		p.FilterLength++
	}
	if p.BlockSize < p.FilterLength {
		return nil, fmt.Errorf("mixer: block size %d shorter than the %d-tap band filters", p.BlockSize, p.FilterLength)
	}
	if p.SpectralFFTLen == 0 {
		p.SpectralFFTLen = 1024
	}

	n := len(p.Config.Channels)
	e := &Engine{
		state:          NewState(n),
		banks:          make([]*Bank, n),
		meters:         make([]analysis.MeterAcc, n),
		lookup:         p.Config.MidiLookup(),
		ui:             p.UI,
		controlIn:      p.ControlIn,
		events:         p.Events,
		blockSize:      p.BlockSize,
		blocksPerFlush: analysis.FlushInterval(p.SampleRate, p.BlockSize),
		publishSpectra: p.PublishSpectra,
	}
	for i := range e.banks {
		e.banks[i] = NewBank(p.LowMidFreq, p.MidHighFreq, p.SampleRate, p.FilterLength)
	}

	if p.Spectral {
		e.spectralEngines = make([]*spectral.Engine, n)
		e.spectralIn = make([]*spectral.Ring, n)
		e.spectralOut = make([]*spectral.Ring, n)
		ringLen := 4 * p.SpectralFFTLen
		if ringLen < 4*p.BlockSize {
			ringLen = 4 * p.BlockSize
		}
		for i := range e.spectralEngines {
			e.spectralEngines[i] = spectral.NewEngine(float32(p.SampleRate), p.SpectralFFTLen)
			e.spectralIn[i] = spectral.NewRing(ringLen)
			e.spectralOut[i] = spectral.NewRing(ringLen)
		}
		// Report the frequency-domain filter's shape once, at setup.
		e.trySendUI(UiMsg{
			Kind:     UiLowPassSpectrum,
			Spectrum: e.spectralEngines[0].FilterMagnitude(),
		})
	}

	return e, nil
}

// UsePassthruBanks replaces every channel's filter bank with an identity
// bank. Setup-time only.
func (e *Engine) UsePassthruBanks() {
	for i := range e.banks {
		e.banks[i] = NewPassthruBank()
	}
}

// Channels returns the channel count.
func (e *Engine) Channels() int {
	return len(e.state.Channels)
}

// Latency returns the processing delay in samples: zero on the FIR path,
// the spectral engine's fixed overlap latency otherwise.
func (e *Engine) Latency() int {
	if e.spectralEngines == nil {
		return 0
	}
	return e.spectralEngines[0].Latency()
}

// Spectra returns channel ch's spectrum monitor slots, or nils when the
// engine runs the FIR path.
func (e *Engine) Spectra(ch int) (in, out *monitor.Slot[[]float32]) {
	if e.spectralEngines == nil {
		return nil, nil
	}
	return e.spectralEngines[ch].Spectra()
}

// DroppedUIMsgs reports how many outbound messages were discarded on a
// full UI queue.
func (e *Engine) DroppedUIMsgs() uint64 {
	return e.droppedUiMsgs
}

// Shutdown releases monitor consumers blocked on the spectrum slots.
func (e *Engine) Shutdown() {
	for _, s := range e.spectralEngines {
		s.Shutdown()
	}
}

// Process is the realtime callback body, run once per block. It drains
// control-surface and UI messages, processes every channel according to
// its mode, accumulates metering and requests shutdown when an inbound
// endpoint has gone away.
func (e *Engine) Process(in, out [][]float32) Control {
	if len(in) != len(e.state.Channels) || len(out) != len(e.state.Channels) {
		panic("mixer: port count does not match channel count")
	}

	quit := false

	// Control-surface events decoded since the last block. Messages take
	// effect from this block on, never retroactively.
	if e.events != nil {
		for {
			ev, ok := e.events.TryPop()
			if !ok {
				break
			}
			effect, ok := e.lookup.Resolve(ev.Key())
			if !ok {
				continue
			}
			gain := midi.Normalize(ev.Value)
			switch effect.Kind {
			case midi.EffectGain:
				e.state.Channels[effect.Channel].Gain = gain
			case midi.EffectLowGain:
				e.banks[effect.Channel].SetLowGain(gain)
			case midi.EffectMidGain:
				e.banks[effect.Channel].SetMidGain(gain)
			case midi.EffectHighGain:
				e.banks[effect.Channel].SetHighGain(gain)
			}
			// Keep the on-screen fader in sync with the physical one.
			e.trySendUI(UiMsg{Kind: UiLevels, Channel: effect.Channel, Gain: gain})
		}
	}

	// UI messages. A closed control queue means the UI is gone and no
	// one is left to drive the mixer.
drain:
	for {
		select {
		case msg, ok := <-e.controlIn:
			if !ok {
				quit = true
				break drain
			}
			e.apply(msg)
		default:
			break drain
		}
	}

	for idx := range e.state.Channels {
		chIn, chOut := in[idx], out[idx]
		st := e.state.Channels[idx]
		acc := &e.meters[idx]

		switch st.Mode {
		case ModeMute:
			// Output meters stay at zero so the UI shows a clean zero
			// rather than stale levels.
			dsp.Clear(chOut)
			for _, s := range chIn {
				acc.SampleIn(s)
			}

		case ModeBypass:
			copy(chOut, chIn)
			for _, s := range chIn {
				acc.SampleIn(s)
				acc.SampleOut(s)
			}

		case ModeNormal:
			dsp.Clear(chOut)
			for _, s := range chIn {
				acc.SampleIn(s)
			}
			// A fader at zero contributes nothing; skip the filters
			// rather than scale their output away.
			if st.Gain != 0 {
				if e.spectralEngines != nil {
					e.processSpectral(idx, chIn, chOut)
				} else {
					e.banks[idx].Apply(chIn, chOut)
				}
				dsp.Scale(chOut, float32(st.Gain))
			}
			for _, s := range chOut {
				acc.SampleOut(s)
			}
		}
	}

	e.blocksAcc++
	if e.blocksAcc >= e.blocksPerFlush {
		sampleCount := e.blocksAcc * e.blockSize
		for idx := range e.meters {
			e.trySendUI(UiMsg{
				Kind:     UiMetering,
				Channel:  idx,
				Metering: e.meters[idx].Snapshot(sampleCount),
			})
			e.meters[idx].Clear()
		}
		e.blocksAcc = 0
	}

	if quit {
		return Quit
	}
	return Continue
}

// processSpectral pushes a block through channel idx's overlap-add
// engine. Until the engine has absorbed its latency the output stays
// silent.
func (e *Engine) processSpectral(idx int, chIn, chOut []float32) {
	if err := e.spectralIn[idx].Write(chIn); err != nil {
		// Ring full: the engine fell behind by more than the ring holds.
		// Drop the block; stale audio is worse than a gap.
		return
	}
	e.spectralEngines[idx].Process(e.spectralIn[idx], e.spectralOut[idx], e.publishSpectra)
	e.spectralOut[idx].TryRead(chOut)
}

// apply routes one inbound message into channel state or band gains.
func (e *Engine) apply(msg AudioMsg) {
	if msg.Channel < 0 || msg.Channel >= len(e.state.Channels) {
		return
	}
	switch msg.Kind {
	case AudioGain:
		e.state.Channels[msg.Channel].Gain = msg.Gain
	case AudioMode:
		prev := e.state.Channels[msg.Channel].Mode
		e.state.Channels[msg.Channel].Mode = msg.Mode
		// Meter display follows mute state.
		if (prev == ModeMute) != (msg.Mode == ModeMute) {
			e.trySendUI(UiMsg{Kind: UiToggleMetering, Channel: msg.Channel})
		}
	case AudioLowGain:
		e.banks[msg.Channel].SetLowGain(msg.Gain)
	case AudioMidGain:
		e.banks[msg.Channel].SetMidGain(msg.Gain)
	case AudioHighGain:
		e.banks[msg.Channel].SetHighGain(msg.Gain)
	}
}

// trySendUI offers a message to the UI queue without ever blocking the
// realtime thread. A full queue drops the message and counts it.
func (e *Engine) trySendUI(msg UiMsg) {
	select {
	case e.ui <- msg:
	default:
		e.droppedUiMsgs++
	}
}
