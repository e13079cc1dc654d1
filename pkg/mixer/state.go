// Package mixer holds the channel state model, the message protocol
// between UI, control surface and engine, and the realtime process
// callback that ties the signal path together.
package mixer

// Mode governs which processing stages run for a channel in a block.
type Mode uint8

const (
	// ModeNormal runs the full filter/spectral path plus gain.
	ModeNormal Mode = iota
	// ModeBypass copies input to output untouched; metering still runs.
	ModeBypass
	// ModeMute forces all-zero output.
	ModeMute
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeBypass:
		return "bypass"
	case ModeMute:
		return "mute"
	default:
		return "unknown"
	}
}

// ChannelState is the per-channel control state. It is owned exclusively
// by the realtime engine; other threads request changes by message.
type ChannelState struct {
	Gain float64
	Mode Mode
}

// State is the whole mixer's control state.
type State struct {
	Channels []ChannelState
}

// NewState creates state for n channels. Faders start down and channels
// start in normal mode, as on the physical desk.
func NewState(n int) State {
	return State{Channels: make([]ChannelState, n)}
}
