// Package noise perturbs composite signals with additive channel noise.
//
// All generators take an explicit random source, so runs are reproducible
// from a seed. A zero noise level turns every generator into the identity,
// which is how a disabled perturbation stage behaves.
package noise

import (
	"errors"
	"math/rand"
)

// Errors returned by noise injection.
var (
	ErrInvalidStdDev    = errors.New("noise: standard deviation must not be negative")
	ErrInvalidAmplitude = errors.New("noise: amplitude must not be negative")
	ErrNilSource        = errors.New("noise: random source must not be nil")
)

// Gaussian returns signal plus white Gaussian noise with the given standard
// deviation. The input is not modified.
func Gaussian(signal []float64, stdDev float64, rng *rand.Rand) ([]float64, error) {
	if stdDev < 0 {
		return nil, ErrInvalidStdDev
	}

	out := make([]float64, len(signal))
	copy(out, signal)

	if stdDev == 0 {
		return out, nil
	}

	if rng == nil {
		return nil, ErrNilSource
	}

	for i := range out {
		out[i] += rng.NormFloat64() * stdDev
	}

	return out, nil
}

// Uniform returns signal plus white noise uniformly distributed in
// [-amplitude, amplitude]. The input is not modified.
func Uniform(signal []float64, amplitude float64, rng *rand.Rand) ([]float64, error) {
	if amplitude < 0 {
		return nil, ErrInvalidAmplitude
	}

	out := make([]float64, len(signal))
	copy(out, signal)

	if amplitude == 0 {
		return out, nil
	}

	if rng == nil {
		return nil, ErrNilSource
	}

	for i := range out {
		out[i] += (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}
