package midi

// Key identifies a physical control on the surface.
type Key struct {
	Channel uint8
	Kind    KeyKind
	Number  uint8
}

// Controller builds a Key for a continuous controller.
func Controller(channel, number uint8) Key {
	return Key{Channel: channel, Kind: KindController, Number: number}
}

// Note builds a Key for a note-on button.
func Note(channel, number uint8) Key {
	return Key{Channel: channel, Kind: KindNote, Number: number}
}

// EffectKind says what a bound control drives on its mixer channel.
type EffectKind uint8

const (
	// EffectGain drives the channel fader.
	EffectGain EffectKind = iota
	// EffectLowGain, EffectMidGain and EffectHighGain drive the filter
	// band gains.
	EffectLowGain
	EffectMidGain
	EffectHighGain
)

// Effect is the mixer-side binding of a control: which channel index it
// acts on and what it changes.
type Effect struct {
	Channel int
	Kind    EffectKind
}

// Lookup resolves control-surface keys to effects in O(1). It is built
// once from config and read-only afterwards, so the realtime callback can
// consult it without allocation or locking.
type Lookup map[Key]Effect

// NewLookup returns an empty lookup table.
func NewLookup() Lookup {
	return make(Lookup)
}

// Bind adds a key binding. Rebinding a key replaces the old effect.
func (l Lookup) Bind(key Key, effect Effect) {
	l[key] = effect
}

// Resolve finds the effect for a key.
func (l Lookup) Resolve(key Key) (Effect, bool) {
	effect, ok := l[key]
	return effect, ok
}
