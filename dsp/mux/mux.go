// Package mux combines per-channel passband signals into one composite
// frequency-division multiplex.
package mux

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by multiplexing.
var (
	ErrNoChannels     = errors.New("mux: at least one channel signal is required")
	ErrEmptyChannel   = errors.New("mux: channel signals must not be empty")
	ErrLengthMismatch = errors.New("mux: channel signals must share one length")
)

// Multiplex sums the channel signals sample by sample:
//
//	composite[k] = Σ_i channels[i][k]
//
// All channels must be sampled on the same clock and share one length.
// Summation order does not matter beyond floating-point rounding. The
// inputs are not modified.
func Multiplex(channels ...[]float64) ([]float64, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	n := len(channels[0])
	if n == 0 {
		return nil, ErrEmptyChannel
	}

	for i, ch := range channels[1:] {
		if len(ch) != n {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d", ErrLengthMismatch, i+1, len(ch), n)
		}
	}

	out := make([]float64, n)
	copy(out, channels[0])

	for _, ch := range channels[1:] {
		vecmath.AddBlockInPlace(out, ch)
	}

	return out, nil
}
