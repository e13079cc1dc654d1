// Package midi maps decoded control-surface events onto mixer effects.
//
// Decoding raw bytes happens on the MIDI listener thread via gomidi; the
// realtime callback only ever sees small Event values popped from a
// lock-free ring and resolved through a prebuilt lookup table.
package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// KeyKind distinguishes the two control-surface sources we bind to.
type KeyKind uint8

const (
	// KindController is a continuous controller (fader, knob).
	KindController KeyKind = iota
	// KindNote is a note-on (button pad).
	KindNote
)

func (k KeyKind) String() string {
	switch k {
	case KindController:
		return "ctrl"
	case KindNote:
		return "note"
	default:
		return "unknown"
	}
}

// Event is one decoded control-surface input: where it came from and the
// 0-127 value it carried.
type Event struct {
	Channel uint8
	Kind    KeyKind
	Number  uint8
	Value   uint8
}

// Key returns the lookup key for the event.
func (e Event) Key() Key {
	return Key{Channel: e.Channel, Kind: e.Kind, Number: e.Number}
}

// Decode converts a raw MIDI message into an Event. Only control changes
// and note-ons are of interest; everything else reports false.
func Decode(raw []byte) (Event, bool) {
	msg := gomidi.Message(raw)

	var channel, number, value uint8
	switch {
	case msg.GetControlChange(&channel, &number, &value):
		return Event{Channel: channel, Kind: KindController, Number: number, Value: value}, true
	case msg.GetNoteOn(&channel, &number, &value):
		return Event{Channel: channel, Kind: KindNote, Number: number, Value: value}, true
	default:
		return Event{}, false
	}
}

// Normalize converts a 7-bit controller value to a 0.0-1.0 gain.
func Normalize(value uint8) float64 {
	return float64(value) / 127
}
