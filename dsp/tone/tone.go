// Package tone synthesizes single-frequency test tones on a shared clock.
//
// Message tones sit at baseband as sines, carrier tones are cosines; both
// conventions come from the coherent demodulation chain, which reuses the
// transmit carrier vector at the receiver.
package tone

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-fdm/dsp/timebase"
)

// Errors returned by tone synthesis.
var (
	ErrInvalidFrequency = errors.New("tone: frequency must be positive")
	ErrAliasedFrequency = errors.New("tone: frequency must be below the Nyquist rate")
)

// Waveform selects the synthesized wave shape.
type Waveform int

const (
	// Sine starts at zero crossing, the shape used for message tones.
	Sine Waveform = iota
	// Cosine starts at its peak, the shape used for carrier tones.
	Cosine
)

// Synthesizer generates tones on a fixed clock so that every synthesized
// signal shares one sampling grid.
type Synthesizer struct {
	clock     timebase.Clock
	amplitude float64
	phase     float64
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithAmplitude sets the peak amplitude. Default is 1.
func WithAmplitude(a float64) Option {
	return func(s *Synthesizer) {
		s.amplitude = a
	}
}

// WithPhase adds a constant phase offset in radians. Default is 0.
func WithPhase(rad float64) Option {
	return func(s *Synthesizer) {
		s.phase = rad
	}
}

// NewSynthesizer creates a tone synthesizer for the given clock.
func NewSynthesizer(clock timebase.Clock, opts ...Option) (*Synthesizer, error) {
	if err := clock.Validate(); err != nil {
		return nil, err
	}

	s := &Synthesizer{clock: clock, amplitude: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s, nil
}

// Clock returns the clock the synthesizer generates on.
func (s *Synthesizer) Clock() timebase.Clock {
	return s.clock
}

// Synthesize generates one tone at freqHz with the given waveform:
//
//	sine:   x[k] = A * sin(2π f k/fs + φ)
//	cosine: x[k] = A * cos(2π f k/fs + φ)
func (s *Synthesizer) Synthesize(w Waveform, freqHz float64) ([]float64, error) {
	if freqHz <= 0 {
		return nil, ErrInvalidFrequency
	}

	if freqHz >= s.clock.Nyquist() {
		return nil, ErrAliasedFrequency
	}

	out := make([]float64, s.clock.Samples())
	step := 2 * math.Pi * freqHz / s.clock.SampleRate

	switch w {
	case Cosine:
		for i := range out {
			out[i] = s.amplitude * math.Cos(step*float64(i)+s.phase)
		}
	default:
		for i := range out {
			out[i] = s.amplitude * math.Sin(step*float64(i)+s.phase)
		}
	}

	return out, nil
}

// Sine generates a sine tone at freqHz.
func (s *Synthesizer) Sine(freqHz float64) ([]float64, error) {
	return s.Synthesize(Sine, freqHz)
}

// Cosine generates a cosine tone at freqHz.
func (s *Synthesizer) Cosine(freqHz float64) ([]float64, error) {
	return s.Synthesize(Cosine, freqHz)
}
