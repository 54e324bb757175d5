package iir

import (
	"math"
	"math/cmplx"
)

// Response computes the complex frequency response H(e^jw) at the given
// frequency (Hz) and sample rate (Hz).
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	z := cmplx.Exp(complex(0, -w)) // z^-1

	num := polyEval(c.B, z)
	den := polyEval(c.A, z)

	return num / den
}

// Magnitude returns |H(f)|.
func (c Coefficients) Magnitude(freqHz, sampleRate float64) float64 {
	return cmplx.Abs(c.Response(freqHz, sampleRate))
}

// MagnitudeDB returns 20*log10(|H(f)|).
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(c.Magnitude(freqHz, sampleRate))
}

// Phase returns the phase response in radians at the given frequency.
// The result is in [-pi, pi].
func (c Coefficients) Phase(freqHz, sampleRate float64) float64 {
	return cmplx.Phase(c.Response(freqHz, sampleRate))
}

// ImpulseResponse computes the first n samples of the impulse response by
// feeding an impulse through a fresh filter.
func (c Coefficients) ImpulseResponse(n int) ([]float64, error) {
	if n <= 0 {
		return nil, nil
	}

	f, err := New(c)
	if err != nil {
		return nil, err
	}

	ir := make([]float64, n)
	ir[0] = f.ProcessSample(1)
	for i := 1; i < n; i++ {
		ir[i] = f.ProcessSample(0)
	}

	return ir, nil
}

// polyEval evaluates p[0] + p[1]*x + ... + p[len-1]*x^(len-1) via Horner.
func polyEval(p []float64, x complex128) complex128 {
	var acc complex128
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*x + complex(p[i], 0)
	}

	return acc
}
