// Package testutil holds assertion and signal helpers shared by tests.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireRootsMatch fails t unless got and want hold the same roots up to
// eps, in any order.
func RequireRootsMatch(t *testing.T, got, want []complex128, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("root count: got %d %v, want %d %v", len(got), got, len(want), want)
	}
	used := make([]bool, len(got))
	for _, w := range want {
		best, bestDist := -1, math.Inf(1)
		for i, g := range got {
			if used[i] {
				continue
			}
			if d := cmplx.Abs(g - w); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 || bestDist > eps {
			t.Fatalf("root %v not found in %v (closest distance %g > eps %g)", w, got, bestDist, eps)
		}
		used[best] = true
	}
}

// MaxAbsDiff returns the maximum absolute difference between two equally
// long slices, or +Inf if their lengths differ.
func MaxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	d := 0.0
	for i := range a {
		d = math.Max(d, math.Abs(a[i]-b[i]))
	}
	return d
}
