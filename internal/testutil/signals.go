// Package testutil provides deterministic signal builders and comparison
// helpers shared by tests across the module.
package testutil

import "math"

// Tone generates amplitude*sin(2*pi*freqHz*k/sampleRate + phase) over n
// samples. A phase of pi/2 turns it into a cosine.
func Tone(freqHz, sampleRate, amplitude, phase float64, n int) []float64 {
	out := make([]float64, n)

	step := 2 * math.Pi * freqHz / sampleRate
	for k := range out {
		out[k] = amplitude * math.Sin(step*float64(k)+phase)
	}

	return out
}

// RMS returns the root mean square of data, or 0 for an empty slice.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(data)))
}

// MaxAbsDiff returns the largest absolute elementwise difference between a
// and b over their common length.
func MaxAbsDiff(a, b []float64) float64 {
	n := min(len(a), len(b))

	maxDiff := 0.0

	for i := 0; i < n; i++ {
		if d := math.Abs(a[i] - b[i]); d > maxDiff {
			maxDiff = d
		}
	}

	return maxDiff
}
