package window

// Analysis holds summary properties of a window computed from its
// coefficients.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the amplitude scaling a windowed
	// sinusoid experiences at its own bin.
	CoherentGain float64
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
}

// Analyze computes coherent gain and equivalent noise bandwidth for the
// given coefficients. Empty or zero-sum coefficients yield a zero Analysis.
func Analyze(coeffs []float64) Analysis {
	if len(coeffs) == 0 {
		return Analysis{}
	}

	sum := 0.0
	sumSquares := 0.0

	for _, c := range coeffs {
		sum += c
		sumSquares += c * c
	}

	if sum == 0 {
		return Analysis{}
	}

	n := float64(len(coeffs))

	return Analysis{
		CoherentGain: sum / n,
		ENBW:         n * sumSquares / (sum * sum),
	}
}
