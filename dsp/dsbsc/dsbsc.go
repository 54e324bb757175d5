// Package dsbsc implements double-sideband suppressed-carrier modulation
// and coherent demodulation.
package dsbsc

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fdm/dsp/iir"
)

// Errors returned by modulation functions.
var (
	ErrEmptyInput     = errors.New("dsbsc: input signals must not be empty")
	ErrLengthMismatch = errors.New("dsbsc: message and carrier must have the same length")
)

// CoherentGain is the amplitude a coherent receiver recovers relative to
// the transmitted message. Mixing with a unit carrier splits the message
// energy between baseband and twice the carrier frequency; the low-pass
// stage keeps only the baseband half.
const CoherentGain = 0.5

// Modulate mixes message onto carrier by sample-wise multiplication,
// producing the double-sideband suppressed-carrier signal
//
//	s[k] = message[k] * carrier[k]
//
// Both inputs must be sampled on the same clock and share one length.
// The inputs are not modified.
func Modulate(message, carrier []float64) ([]float64, error) {
	if len(message) == 0 || len(carrier) == 0 {
		return nil, ErrEmptyInput
	}

	if len(message) != len(carrier) {
		return nil, fmt.Errorf("%w: %d vs %d samples", ErrLengthMismatch, len(message), len(carrier))
	}

	out := make([]float64, len(message))
	vecmath.MulBlock(out, message, carrier)

	return out, nil
}

// Demodulate coherently recovers one baseband channel from a composite
// signal. The composite is mixed with the channel carrier and the product
// is low-pass filtered causally from zero initial state, so the leading
// output samples carry the filter's settling transient. The recovered
// amplitude is CoherentGain times the transmitted message.
func Demodulate(composite, carrier []float64, lowpass iir.Coefficients) ([]float64, error) {
	product, err := Modulate(composite, carrier)
	if err != nil {
		return nil, err
	}

	out, err := iir.Apply(lowpass, product)
	if err != nil {
		return nil, fmt.Errorf("dsbsc: demodulation filter: %w", err)
	}

	return out, nil
}
