// Package recovery quantifies how faithfully a demodulated baseband matches
// the tone it should carry.
//
// A causal demodulation filter delays and slightly attenuates the recovered
// tone, so sample-by-sample comparison against the transmitted message
// conflates filter phase lag with genuine distortion. Fit instead projects
// the recovered signal onto a sine/cosine basis at the message frequency by
// least squares, which separates the three quantities of interest: the
// recovered amplitude, the phase lag, and everything the tone model does not
// explain (transient residue, crosstalk, noise).
package recovery

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by recovery analysis.
var (
	ErrInvalidSampleRate = errors.New("recovery: sample rate must be positive")
	ErrInvalidFrequency  = errors.New("recovery: frequency must lie strictly between 0 and the Nyquist frequency")
	ErrInvalidSkip       = errors.New("recovery: skip must not be negative")
	ErrShortSignal       = errors.New("recovery: too few samples after discarding the transient")
	ErrCountMismatch     = errors.New("recovery: recovered channels and message frequencies must match in count")
)

// Quality describes one recovered channel.
type Quality struct {
	// Amplitude is the least-squares amplitude of the tone component.
	Amplitude float64

	// PhaseRad is the tone's phase offset in radians relative to
	// sin(2*pi*f*t), negative for a lagging filter.
	PhaseRad float64

	// ResidualRMS is the RMS of the recovered signal minus the fitted
	// tone: transient residue, crosstalk and noise.
	ResidualRMS float64

	// Correlation is the Pearson correlation between the recovered
	// signal and the fitted tone, or 0 when either side is constant.
	Correlation float64

	// Samples is the number of samples that entered the fit.
	Samples int
}

// Fit estimates the tone content of recovered at freqHz.
//
// The first skip samples are discarded so the demodulation filter's start-up
// transient does not bias the estimate. The remainder is fitted to
//
//	x[k] = p*sin(2*pi*f*t[k]) + q*cos(2*pi*f*t[k])
//
// by solving the least-squares normal equations, and the fit is summarized
// as amplitude hypot(p, q) and phase atan2(q, p).
func Fit(recovered []float64, freqHz, sampleRate float64, skip int) (Quality, error) {
	if sampleRate <= 0 {
		return Quality{}, fmt.Errorf("%w: got %g", ErrInvalidSampleRate, sampleRate)
	}

	if freqHz <= 0 || freqHz >= sampleRate/2 {
		return Quality{}, fmt.Errorf("%w: got %g Hz at %g Hz sample rate", ErrInvalidFrequency, freqHz, sampleRate)
	}

	if skip < 0 {
		return Quality{}, fmt.Errorf("%w: got %d", ErrInvalidSkip, skip)
	}

	if len(recovered)-skip < 2 {
		return Quality{}, fmt.Errorf("%w: %d samples, skip %d", ErrShortSignal, len(recovered), skip)
	}

	x := recovered[skip:]
	n := len(x)

	sin := make([]float64, n)
	cos := make([]float64, n)

	step := 2 * math.Pi * freqHz / sampleRate
	for k := range sin {
		phi := step * float64(skip+k)
		sin[k] = math.Sin(phi)
		cos[k] = math.Cos(phi)
	}

	normal := mat.NewDense(2, 2, []float64{
		floats.Dot(sin, sin), floats.Dot(sin, cos),
		floats.Dot(cos, sin), floats.Dot(cos, cos),
	})
	rhs := mat.NewVecDense(2, []float64{
		floats.Dot(x, sin),
		floats.Dot(x, cos),
	})

	var sol mat.VecDense
	if err := sol.SolveVec(normal, rhs); err != nil {
		return Quality{}, fmt.Errorf("recovery: degenerate tone basis at %g Hz: %w", freqHz, err)
	}

	p := sol.AtVec(0)
	q := sol.AtVec(1)

	fit := make([]float64, n)
	residual := make([]float64, n)

	for k := range fit {
		fit[k] = p*sin[k] + q*cos[k]
		residual[k] = x[k] - fit[k]
	}

	correlation := stat.Correlation(x, fit, nil)
	if math.IsNaN(correlation) {
		correlation = 0
	}

	return Quality{
		Amplitude:   math.Hypot(p, q),
		PhaseRad:    math.Atan2(q, p),
		ResidualRMS: floats.Norm(residual, 2) / math.Sqrt(float64(n)),
		Correlation: correlation,
		Samples:     n,
	}, nil
}

// Report fits every channel of a demodulated set against its message
// frequency. The slices are parallel: recovered[i] carries freqsHz[i].
func Report(recovered [][]float64, freqsHz []float64, sampleRate float64, skip int) ([]Quality, error) {
	if len(recovered) != len(freqsHz) {
		return nil, fmt.Errorf("%w: %d channels vs %d frequencies", ErrCountMismatch, len(recovered), len(freqsHz))
	}

	out := make([]Quality, len(recovered))

	for i := range recovered {
		q, err := Fit(recovered[i], freqsHz[i], sampleRate, skip)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}

		out[i] = q
	}

	return out, nil
}
