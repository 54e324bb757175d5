// Package design produces low-pass filter coefficients for the coherent
// demodulation chain.
//
// Filters are designed as cascades of second-order sections and expanded
// into a single transfer function polynomial pair, the form dsp/iir
// consumes.
package design

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fdm/dsp/iir"
)

// Errors returned by filter design.
var (
	ErrInvalidSampleRate = errors.New("design: sample rate must be positive")
	ErrInvalidOrder      = errors.New("design: order must be at least 1")
	ErrInvalidCutoff     = errors.New("design: normalized cutoff must lie strictly between 0 and 1")
)

// DefaultOrder is the filter order used when a caller does not choose one.
const DefaultOrder = 4

// NormalizedCutoff returns the cutoff as a fraction of the Nyquist rate.
func NormalizedCutoff(cutoffHz, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}

	return cutoffHz / (sampleRate / 2)
}

// ButterworthLP designs a digital Butterworth lowpass.
//
// The filter is built as a cascade of second-order sections with the
// Butterworth quality factors
//
//	Q_i = 1 / (2 sin(π(2i+1)/(2n)))
//
// plus a first-order section for odd orders, then expanded into one
// numerator/denominator pair by polynomial multiplication. The bilinear
// transform pre-warps the cutoff, so the -3 dB point lands exactly on
// cutoffHz.
func ButterworthLP(cutoffHz float64, order int, sampleRate float64) (iir.Coefficients, error) {
	if sampleRate <= 0 {
		return iir.Coefficients{}, ErrInvalidSampleRate
	}

	if order < 1 {
		return iir.Coefficients{}, fmt.Errorf("%w: got %d", ErrInvalidOrder, order)
	}

	if w := NormalizedCutoff(cutoffHz, sampleRate); w <= 0 || w >= 1 {
		return iir.Coefficients{}, fmt.Errorf("%w: cutoff %g Hz at %g Hz sample rate gives %g",
			ErrInvalidCutoff, cutoffHz, sampleRate, w)
	}

	b := []float64{1}
	a := []float64{1}

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		q := butterworthQ(order, i)
		sb, sa := lowpassSection(cutoffHz, q, sampleRate)
		b = polyMul(b, sb)
		a = polyMul(a, sa)
	}

	if order%2 != 0 {
		sb, sa := firstOrderLowpass(cutoffHz, sampleRate)
		b = polyMul(b, sb)
		a = polyMul(a, sa)
	}

	return iir.Coefficients{B: b, A: a}, nil
}

// butterworthQ returns the quality factor for a Butterworth filter section.
// index ranges from 0 to (order/2 - 1) for the second-order sections.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return 1 / math.Sqrt2 // default Q
	}

	return 1 / (2 * s)
}

// lowpassSection designs a single lowpass biquad at freq (Hz) with quality
// factor q and returns its polynomials normalized so that a[0] == 1.
func lowpassSection(freq, q, sampleRate float64) (b, a []float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := (1 - cw) / 2
	b1 := 1 - cw
	b2 := (1 - cw) / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return []float64{b0 / a0, b1 / a0, b2 / a0}, []float64{1, a1 / a0, a2 / a0}
}

// firstOrderLowpass designs the first-order tail section used for odd
// orders, with tan pre-warping for the bilinear transform.
func firstOrderLowpass(freq, sampleRate float64) (b, a []float64) {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return []float64{k * norm, k * norm}, []float64{1, (k - 1) * norm}
}

// polyMul multiplies two coefficient sequences in ascending powers of z^-1.
func polyMul(p, q []float64) []float64 {
	out := make([]float64, len(p)+len(q)-1)
	for i, pv := range p {
		for j, qv := range q {
			out[i+j] += pv * qv
		}
	}

	return out
}
