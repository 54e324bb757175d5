// Package timebase defines the sampling grid shared by every stage of a
// multiplex simulation run.
//
// All signals in one run are sampled on the same clock, so sample counts
// and time axes derived here stay consistent from synthesis through
// demodulation.
package timebase

import (
	"errors"
	"math"
)

// Errors returned by clock validation.
var (
	ErrInvalidSampleRate = errors.New("timebase: sample rate must be positive")
	ErrInvalidDuration   = errors.New("timebase: duration must be positive")
)

// Clock fixes the sample rate and observation window of a run.
type Clock struct {
	SampleRate float64 // samples per second in Hz
	Duration   float64 // observation window in seconds
}

// Validate checks that the clock parameters are physically meaningful.
func (c Clock) Validate() error {
	if c.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	if c.Duration <= 0 {
		return ErrInvalidDuration
	}

	return nil
}

// Samples returns the number of sample instants in the observation window,
// floor(Duration * SampleRate). Fractional trailing time is dropped rather
// than rounded so that every signal on the clock fits inside the window.
func (c Clock) Samples() int {
	n := int(math.Floor(c.Duration * c.SampleRate))
	if n < 0 {
		return 0
	}

	return n
}

// Nyquist returns half the sample rate, the highest representable frequency.
func (c Clock) Nyquist() float64 {
	return c.SampleRate / 2
}

// Times returns the time axis t[k] = k/SampleRate for each sample instant.
func (c Clock) Times() ([]float64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, c.Samples())
	for i := range out {
		out[i] = float64(i) / c.SampleRate
	}

	return out, nil
}
