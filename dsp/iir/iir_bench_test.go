package iir

import (
	"math"
	"testing"
)

func benchCoefficients() Coefficients {
	// Fourth-order placeholder with stable poles.
	return Coefficients{
		B: []float64{0.0048, 0.0193, 0.0289, 0.0193, 0.0048},
		A: []float64{1, -2.3695, 2.3140, -1.0547, 0.1874},
	}
}

func benchSignal(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / 64)
	}

	return out
}

func BenchmarkProcessSample(b *testing.B) {
	f, err := New(benchCoefficients())
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}

	b.ReportAllocs()

	x := 0.5
	for b.Loop() {
		x = f.ProcessSample(x)
	}
}

func BenchmarkProcessBlock(b *testing.B) {
	f, err := New(benchCoefficients())
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}

	buf := benchSignal(4096)

	b.ReportAllocs()

	for b.Loop() {
		f.ProcessBlock(buf)
	}
}

func BenchmarkApply(b *testing.B) {
	c := benchCoefficients()
	signal := benchSignal(4096)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := Apply(c, signal); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
