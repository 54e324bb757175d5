package testutil

import (
	"math"
	"testing"
)

// RequireNear fails t if got deviates from want by more than eps.
func RequireNear(t *testing.T, got, want, eps float64) {
	t.Helper()

	if math.IsNaN(got) || math.Abs(got-want) > eps {
		t.Fatalf("got %v, expected %v within %v (off by %v)", got, want, eps, math.Abs(got-want))
	}
}

// RequireSliceNear fails t if got and want differ in length or if any
// element pair deviates by more than eps.
func RequireSliceNear(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, expected %d", len(got), len(want))
	}

	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if math.IsNaN(diff) || diff > eps {
			t.Fatalf("sample %d: got %v, expected %v within %v", i, got[i], want[i], eps)
		}
	}
}
