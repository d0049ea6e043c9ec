package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/filter-playground/internal/testutil"
)

func TestAnalyzeRoundTrip(t *testing.T) {
	zeros := []complex128{complex(-0.4, 0.7), complex(-0.4, -0.7), -0.9}
	poles := []complex128{complex(0.6, 0.6), complex(0.6, -0.6), 0.3, complex(-0.2, 0.5), complex(-0.2, -0.5)}

	c, err := Synthesize(zeros, poles)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	roots, err := Analyze(c)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	testutil.RequireRootsMatch(t, roots.Poles, poles, 1e-8)
	testutil.RequireRootsMatch(t, roots.Zeros, zeros, 1e-8)
	if math.Abs(roots.Gain-1) > 1e-12 {
		t.Fatalf("Gain = %v, want 1", roots.Gain)
	}
	if roots.Delay != 0 {
		t.Fatalf("Delay = %d, want 0", roots.Delay)
	}

	again, err := roots.Synthesize(New())
	if err != nil {
		t.Fatalf("Roots.Synthesize: %v", err)
	}
	if !again.Equal(c, 1e-9) {
		t.Fatalf("round trip = %v, want %v", again, c)
	}
}

func TestAnalyzeDemoFilter(t *testing.T) {
	raw := Coefficients{Feedforward: demoFeedforward, Feedback: demoFeedback}
	roots, err := Analyze(raw)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(roots.Zeros) != 2 || len(roots.Poles) != 2 {
		t.Fatalf("roots = %+v, want two zeros and two poles", roots)
	}
	for _, z := range roots.Zeros {
		if math.Abs(real(z)+1) > 1e-3 || math.Abs(imag(z)) > 1e-3 {
			t.Fatalf("zero %v, want near -1", z)
		}
	}
	if !Stable(roots.Poles) {
		t.Fatalf("demo poles %v not stable", roots.Poles)
	}
	p0, p1 := roots.Poles[0], roots.Poles[1]
	if p0 != complex(real(p1), -imag(p1)) {
		t.Fatalf("poles %v, %v not exact conjugates", p0, p1)
	}
	if math.Abs(real(p0)-0.987062) > 1e-5 || math.Abs(math.Abs(imag(p0))-0.025186) > 1e-5 {
		t.Fatalf("pole %v, want about 0.987062±0.025186i", p0)
	}
	if want := demoFeedforward[0] / demoFeedback[0]; math.Abs(roots.Gain-want) > 1e-15 {
		t.Fatalf("Gain = %v, want %v", roots.Gain, want)
	}
}

func TestAnalyzeDelayAndOriginRoots(t *testing.T) {
	// z^-2 * (1 - 0.5 z^-1) with trailing padding.
	c := Coefficients{
		Feedforward: []float64{0, 0, 2, -1, 0},
		Feedback:    []float64{1, 0, 0, 0, 0},
	}
	roots, err := Analyze(c)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if roots.Delay != 2 {
		t.Fatalf("Delay = %d, want 2", roots.Delay)
	}
	testutil.RequireRootsMatch(t, roots.Zeros, []complex128{0.5}, 1e-15)
	if len(roots.Poles) != 0 {
		t.Fatalf("Poles = %v, want none", roots.Poles)
	}
	if roots.Gain != 2 {
		t.Fatalf("Gain = %v, want 2", roots.Gain)
	}

	back, err := roots.Synthesize(New())
	if err != nil {
		t.Fatalf("Roots.Synthesize: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, back.Feedforward, []float64{0, 0, 2, -1}, 1e-15)
	testutil.RequireSliceNearlyEqual(t, back.Feedback, []float64{1, 0, 0, 0}, 0)
}

func TestAnalyzeSilentFilter(t *testing.T) {
	roots, err := Analyze(Coefficients{Feedforward: []float64{0, 0}, Feedback: []float64{1, -0.5}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if roots.Gain != 0 || len(roots.Zeros) != 0 {
		t.Fatalf("roots = %+v, want zero gain without zeros", roots)
	}
	testutil.RequireRootsMatch(t, roots.Poles, []complex128{0.5}, 1e-15)

	for _, s := range []*Synthesizer{New(), New(WithNormalization(NormalizeDC))} {
		back, err := roots.Synthesize(s)
		if err != nil {
			t.Fatalf("Roots.Synthesize: %v", err)
		}
		testutil.RequireSliceNearlyEqual(t, back.Feedforward, []float64{0, 0}, 0)
		testutil.RequireSliceNearlyEqual(t, back.Feedback, []float64{1, -0.5}, 0)
	}
}

func TestRootsSynthesizeUsesGainAsGiven(t *testing.T) {
	r := Roots{Zeros: []complex128{-1}, Gain: 0.25}
	c, err := r.Synthesize(New())
	if err != nil {
		t.Fatalf("Roots.Synthesize: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, c.Feedforward, []float64{0.25, 0.25}, 0)

	silent, err := Roots{Zeros: []complex128{-1}}.Synthesize(New())
	if err != nil {
		t.Fatalf("Roots.Synthesize: %v", err)
	}
	if testutil.MaxAbsDiff(silent.Feedforward, []float64{0, 0}) != 0 {
		t.Fatalf("zero gain Feedforward = %v, want silence", silent.Feedforward)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := Analyze(Coefficients{}); !errors.Is(err, ErrEmptyCoefficients) {
		t.Fatalf("err = %v, want ErrEmptyCoefficients", err)
	}
	_, err := Analyze(Coefficients{Feedforward: []float64{1}, Feedback: []float64{0, 1}})
	if !errors.Is(err, ErrZeroLeadingFeedback) {
		t.Fatalf("err = %v, want ErrZeroLeadingFeedback", err)
	}
}
