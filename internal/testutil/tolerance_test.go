package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.1, 3})
	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff = %v, want 0.1", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	if d := MaxAbsDiff([]float64{1}, []float64{1, 2}); !math.IsInf(d, 1) {
		t.Fatalf("MaxAbsDiff = %v, want +Inf", d)
	}
}

func TestRequireRootsMatchIgnoresOrder(t *testing.T) {
	got := []complex128{complex(0.5, -0.3), complex(-1, 0), complex(0.5, 0.3)}
	want := []complex128{complex(-1, 0), complex(0.5, 0.3), complex(0.5, -0.3+1e-12)}
	RequireRootsMatch(t, got, want, 1e-9)
}

func TestRequireSliceNearlyEqual(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2}, []float64{1 + 1e-12, 2}, 1e-9)
}
