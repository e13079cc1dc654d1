package mixer

import "github.com/mixdeck/mixdeck/pkg/dsp/filter"

// Bank is one channel's three-band filter bank. The bands are applied
// additively into the same output buffer, so each band's gain shapes the
// mix of the summed result.
type Bank struct {
	low  *filter.FIR
	mid  *filter.FIR
	high *filter.FIR
}

// NewBank designs the band filters around the two crossover frequencies.
func NewBank(lowMidFreq, midHighFreq float32, sampleRate float64, length int) *Bank {
	rate := float32(sampleRate)
	return &Bank{
		low:  filter.LowPass(lowMidFreq, rate, length),
		mid:  filter.BandPass(lowMidFreq, midHighFreq, rate, length),
		high: filter.HighPass(midHighFreq, rate, length),
	}
}

// NewPassthruBank returns a bank that reproduces the input exactly, used
// when a channel should mix without equalization.
func NewPassthruBank() *Bank {
	return &Bank{low: filter.Passthru()}
}

// Apply runs the configured bands additively into output.
func (b *Bank) Apply(input, output []float32) {
	if b.low != nil {
		b.low.Apply(input, output)
	}
	if b.mid != nil {
		b.mid.Apply(input, output)
	}
	if b.high != nil {
		b.high.Apply(input, output)
	}
}

// SetLowGain, SetMidGain and SetHighGain rescale a band's weights. Bands
// missing from the bank ignore the change.
func (b *Bank) SetLowGain(gain float64) {
	if b.low != nil {
		b.low.SetGain(gain)
	}
}

func (b *Bank) SetMidGain(gain float64) {
	if b.mid != nil {
		b.mid.SetGain(gain)
	}
}

func (b *Bank) SetHighGain(gain float64) {
	if b.high != nil {
		b.high.SetGain(gain)
	}
}
