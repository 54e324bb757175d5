package recovery_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fdm/measure/recovery"
)

func ExampleFit() {
	// A clean 700 Hz tone with amplitude 0.3 and a 0.8 rad phase offset.
	signal := make([]float64, 600)
	for k := range signal {
		signal[k] = 0.3 * math.Sin(2*math.Pi*700*float64(k)/50000+0.8)
	}

	q, err := recovery.Fit(signal, 700, 50000, 100)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("amplitude   %.3f\n", q.Amplitude)
	fmt.Printf("phase       %.3f rad\n", q.PhaseRad)
	fmt.Printf("residual    %.3f\n", q.ResidualRMS)
	fmt.Printf("correlation %.3f\n", q.Correlation)
	// Output:
	// amplitude   0.300
	// phase       0.800 rad
	// residual    0.000
	// correlation 1.000
}
