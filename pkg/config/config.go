// Package config loads and validates the mixer's channel layout and
// control-surface bindings. The config is an immutable snapshot taken at
// startup; it is never reloaded while the engine runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mixdeck/mixdeck/pkg/midi"
)

// FileName is the config file looked for in the working directory when no
// explicit path is given.
const FileName = "mixdeck.yaml"

// Config describes the mixer. Channel order matters: it fixes the array
// indices used throughout the engine and the port naming.
type Config struct {
	Channels []Channel `yaml:"channels"`
}

// Channel is one mixer strip with optional control-surface bindings for
// the band gains and the fader.
type Channel struct {
	Name   string `yaml:"name"`
	High   *Key   `yaml:"high,omitempty"`
	Mid    *Key   `yaml:"mid,omitempty"`
	Low    *Key   `yaml:"low,omitempty"`
	Volume *Key   `yaml:"volume,omitempty"`
}

// Key is a control-surface binding, written in yaml as a three-element
// sequence: [midi-channel, kind, number] with kind "ctrl" or "note".
type Key struct {
	Channel uint8
	Kind    midi.KeyKind
	Number  uint8
}

// UnmarshalYAML decodes the [channel, kind, number] form and rejects
// unknown kinds at load time, before the engine exists.
func (k *Key) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Channel uint8
		Kind    string
		Number  uint8
	}
	var seq []yaml.Node
	if err := value.Decode(&seq); err != nil {
		return fmt.Errorf("midi key must be a sequence: %w", err)
	}
	if len(seq) != 3 {
		return fmt.Errorf("midi key needs 3 elements, got %d", len(seq))
	}
	if err := seq[0].Decode(&raw.Channel); err != nil {
		return fmt.Errorf("midi key channel: %w", err)
	}
	if err := seq[1].Decode(&raw.Kind); err != nil {
		return fmt.Errorf("midi key kind: %w", err)
	}
	if err := seq[2].Decode(&raw.Number); err != nil {
		return fmt.Errorf("midi key number: %w", err)
	}

	switch raw.Kind {
	case "ctrl":
		k.Kind = midi.KindController
	case "note":
		k.Kind = midi.KindNote
	default:
		return fmt.Errorf("unrecognised midi key kind %q", raw.Kind)
	}
	k.Channel = raw.Channel
	k.Number = raw.Number
	return nil
}

// MidiKey converts the binding to the engine's lookup key.
func (k *Key) MidiKey() midi.Key {
	return midi.Key{Channel: k.Channel, Kind: k.Kind, Number: k.Number}
}

// Default returns the stereo passthrough config used when no file exists.
func Default() *Config {
	return &Config{
		Channels: []Channel{
			{Name: "left"},
			{Name: "right"},
		},
	}
}

// Load reads the config. With an explicit path any error is fatal; with
// an empty path the working directory is searched and a missing file
// falls back to the default config.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates raw yaml config bytes.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Channels) == 0 {
		return fmt.Errorf("config has no channels")
	}
	seen := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel with empty name")
		}
		if seen[ch.Name] {
			return fmt.Errorf("duplicate channel name %q", ch.Name)
		}
		seen[ch.Name] = true
	}
	return nil
}

// MidiLookup builds the control-surface lookup table: volume drives the
// channel fader, high/mid/low drive the matching filter band gains.
func (c *Config) MidiLookup() midi.Lookup {
	lookup := midi.NewLookup()
	for idx, ch := range c.Channels {
		if ch.Volume != nil {
			lookup.Bind(ch.Volume.MidiKey(), midi.Effect{Channel: idx, Kind: midi.EffectGain})
		}
		if ch.Low != nil {
			lookup.Bind(ch.Low.MidiKey(), midi.Effect{Channel: idx, Kind: midi.EffectLowGain})
		}
		if ch.Mid != nil {
			lookup.Bind(ch.Mid.MidiKey(), midi.Effect{Channel: idx, Kind: midi.EffectMidGain})
		}
		if ch.High != nil {
			lookup.Bind(ch.High.MidiKey(), midi.Effect{Channel: idx, Kind: midi.EffectHighGain})
		}
	}
	return lookup
}
