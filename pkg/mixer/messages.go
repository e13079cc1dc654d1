package mixer

import "github.com/mixdeck/mixdeck/pkg/dsp/analysis"

// AudioMsg is an inbound control message for the realtime engine. UI and
// control-surface changes both funnel into this one type, so the engine
// has a single uniform handler regardless of where a change originated.
type AudioMsg struct {
	Channel int
	Kind    AudioMsgKind
	Gain    float64
	Mode    Mode
}

// AudioMsgKind tags which field of an AudioMsg is meaningful.
type AudioMsgKind uint8

const (
	// AudioGain sets the channel fader.
	AudioGain AudioMsgKind = iota
	// AudioMode switches the channel mode.
	AudioMode
	// AudioLowGain, AudioMidGain and AudioHighGain set filter band gains.
	AudioLowGain
	AudioMidGain
	AudioHighGain
)

// GainMsg builds a fader change.
func GainMsg(channel int, gain float64) AudioMsg {
	return AudioMsg{Channel: channel, Kind: AudioGain, Gain: gain}
}

// ModeMsg builds a mode change.
func ModeMsg(channel int, mode Mode) AudioMsg {
	return AudioMsg{Channel: channel, Kind: AudioMode, Mode: mode}
}

// BandGainMsg builds a band gain change for one of the band kinds.
func BandGainMsg(channel int, kind AudioMsgKind, gain float64) AudioMsg {
	return AudioMsg{Channel: channel, Kind: kind, Gain: gain}
}

// UiMsg is an outbound message to the UI layer, delivered over a bounded
// queue with try-send so the realtime engine never blocks on a slow UI.
type UiMsg struct {
	Kind     UiMsgKind
	Channel  int
	Gain     float64
	Metering analysis.Metering
	Spectrum []float32
}

// UiMsgKind tags the outbound message variants.
type UiMsgKind uint8

const (
	// UiLevels reports a fader position change (e.g. from MIDI) so the
	// UI can move the on-screen fader.
	UiLevels UiMsgKind = iota
	// UiMetering carries a channel's flushed metering snapshot.
	UiMetering
	// UiToggleMetering asks the UI to show or hide a channel's meters,
	// sent when the channel's mute state flips.
	UiToggleMetering
	// UiLowPassSpectrum carries the spectral engine's precomputed filter
	// magnitude spectrum, sent once at setup.
	UiLowPassSpectrum
	// UiAudioInSpectrum and UiAudioOutSpectrum carry live magnitude
	// spectra from the monitor consumers.
	UiAudioInSpectrum
	UiAudioOutSpectrum
)
