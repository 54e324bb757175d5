package spectrum

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by tone probe functions.
var (
	ErrProbeFrequency = errors.New("spectrum: probe frequency must lie in [0, sampleRate/2]")
)

// ToneProbe estimates the amplitude of a single frequency component using
// the Goertzel recurrence, which evaluates one DFT term without a full
// transform. This makes it cheap to check a handful of known frequencies,
// such as the carriers of a multiplexed signal or the residue a channel
// leaks into a neighbor.
//
// The probe is stateful: Amplitude and Power reflect every sample processed
// since the last Reset. The estimate is exact when the processed block spans
// an integer number of cycles of the probe frequency; otherwise leakage from
// the block edges biases it, more so for short blocks.
type ToneProbe struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
	count      int
}

// NewToneProbe creates a probe for the given frequency.
func NewToneProbe(frequencyHz, sampleRate float64) (*ToneProbe, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidSampleRate, sampleRate)
	}

	if frequencyHz < 0 || frequencyHz > sampleRate/2 || math.IsNaN(frequencyHz) {
		return nil, fmt.Errorf("%w: got %g Hz at %g Hz sample rate", ErrProbeFrequency, frequencyHz, sampleRate)
	}

	return &ToneProbe{
		frequency:  frequencyHz,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequencyHz/sampleRate),
	}, nil
}

// Reset clears the accumulated state.
func (p *ToneProbe) Reset() {
	p.s0 = 0
	p.s1 = 0
	p.count = 0
}

// ProcessSample feeds a single sample into the probe.
func (p *ToneProbe) ProcessSample(input float64) {
	s := input + p.coeff*p.s0 - p.s1
	p.s1 = p.s0
	p.s0 = s
	p.count++
}

// ProcessBlock feeds a block of samples into the probe.
func (p *ToneProbe) ProcessBlock(input []float64) {
	s0, s1 := p.s0, p.s1

	coeff := p.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	p.s0, p.s1 = s0, s1
	p.count += len(input)
}

// Power returns the squared DFT magnitude |X(f)|^2 of the processed samples
// at the probe frequency.
func (p *ToneProbe) Power() float64 {
	return p.s0*p.s0 + p.s1*p.s1 - p.coeff*p.s0*p.s1
}

// Amplitude returns the estimated amplitude of a real sinusoid at the probe
// frequency. For a block holding x[k] = A*sin(2*pi*f*k/fs + phi) over an
// integer number of cycles the result is A, independent of phi.
func (p *ToneProbe) Amplitude() float64 {
	if p.count == 0 {
		return 0
	}

	pw := p.Power()
	if pw <= 0 {
		return 0
	}

	return 2 * math.Sqrt(pw) / float64(p.count)
}

// Frequency returns the probe frequency in Hz.
func (p *ToneProbe) Frequency() float64 { return p.frequency }

// SampleRate returns the probe sample rate in Hz.
func (p *ToneProbe) SampleRate() float64 { return p.sampleRate }

// ProbeAmplitude estimates the amplitude of a single frequency component in
// one shot.
func ProbeAmplitude(signal []float64, frequencyHz, sampleRate float64) (float64, error) {
	p, err := NewToneProbe(frequencyHz, sampleRate)
	if err != nil {
		return 0, err
	}

	p.ProcessBlock(signal)

	return p.Amplitude(), nil
}
