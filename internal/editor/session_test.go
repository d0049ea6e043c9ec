package editor

import (
	"errors"
	"sync"
	"testing"

	"github.com/cwbudde/filter-playground/dsp/filter/synth"
	"github.com/cwbudde/filter-playground/dsp/polezero"
	"github.com/cwbudde/filter-playground/internal/testutil"
)

type recordingSink struct {
	mu  sync.Mutex
	got []synth.Coefficients
}

func (r *recordingSink) SetCoefficients(c synth.Coefficients) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, c)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func (r *recordingSink) last() synth.Coefficients {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.got) == 0 {
		return synth.Coefficients{}
	}
	return r.got[len(r.got)-1]
}

// newTestSession uses a 400px canvas over [-2, 2]: 100 px per unit, origin
// at (200, 200).
func newTestSession(t *testing.T, opts ...Option) (*Session, *recordingSink) {
	t.Helper()
	vp, err := polezero.NewViewport(400, 400, polezero.DefaultPlotRange)
	if err != nil {
		t.Fatalf("NewViewport: %v", err)
	}
	sink := &recordingSink{}
	return NewSession(vp, append([]Option{WithSink(sink)}, opts...)...), sink
}

func TestPointerDragMovesEngagedPoint(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.Add(polezero.Pole); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ref, ok := s.PointerDown(205, 195)
	if !ok || ref != (polezero.Ref{Kind: polezero.Pole, Index: 0}) {
		t.Fatalf("PointerDown = %v, %v", ref, ok)
	}
	if err := s.PointerMove(250, 170); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	s.PointerUp()
	if err := s.PointerMove(300, 300); err != nil {
		t.Fatalf("PointerMove after release: %v", err)
	}

	p, _ := s.Model().At(ref)
	if p != polezero.Pt(0.5, 0.3) {
		t.Fatalf("pole = %v, want (0.5+0.3i)", p)
	}
}

func TestPointerDownPrefersPoles(t *testing.T) {
	s, _ := newTestSession(t)
	_, _ = s.Add(polezero.Zero)
	_, _ = s.Add(polezero.Pole)

	ref, ok := s.PointerDown(200, 200)
	if !ok || ref.Kind != polezero.Pole {
		t.Fatalf("PointerDown = %v, %v, want the pole", ref, ok)
	}
}

func TestPointerDownMissReleases(t *testing.T) {
	s, _ := newTestSession(t)
	_, _ = s.Add(polezero.Pole)
	s.PointerDown(200, 200)

	// 0.2 units away on one axis is outside the 0.1 box.
	if _, ok := s.PointerDown(220, 200); ok {
		t.Fatal("press outside the hit box engaged a point")
	}
	if _, engaged := s.Engaged(); engaged {
		t.Fatal("miss did not release the engagement")
	}
}

func TestAtMostOneEngagedPoint(t *testing.T) {
	s, _ := newTestSession(t)
	a, _ := s.Add(polezero.Pole)
	b, _ := s.Add(polezero.Pole)
	if err := s.MoveTo(b, polezero.Pt(0.5, 0)); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}

	s.PointerDown(200, 200)
	s.PointerDown(250, 200)
	if ref, ok := s.Engaged(); !ok || ref != b {
		t.Fatalf("Engaged = %v, %v, want %v", ref, ok, b)
	}
	if err := s.PointerMove(180, 200); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	if p, _ := s.Model().At(a); p != (polezero.Point{}) {
		t.Fatalf("unengaged point moved to %v", p)
	}
}

func TestSyncPushesConjugatePair(t *testing.T) {
	s, sink := newTestSession(t, WithPolicy(polezero.PolicyConjugate))
	_, _ = s.Add(polezero.Pole)
	s.PointerDown(200, 200)
	if err := s.PointerMove(250, 170); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	c := sink.last()
	testutil.RequireSliceNearlyEqual(t, c.Feedback, []float64{1, -1, 0.34}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, c.Feedforward, []float64{1, 0, 0}, 0)
}

func TestSyncSkipsUnchangedModel(t *testing.T) {
	s, sink := newTestSession(t)
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("sink calls = %d, want 1", sink.count())
	}
	testutil.RequireSliceNearlyEqual(t, sink.last().Feedback, []float64{1}, 0)
}

func TestSyncFailureKeepsLastGood(t *testing.T) {
	s, sink := newTestSession(t)
	ref, _ := s.Add(polezero.Pole)
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	good := s.Coefficients()

	// A lone complex pole cannot give real coefficients.
	if err := s.MoveTo(ref, polezero.Pt(0.5, 0.3)); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	err := s.Sync()
	if !errors.Is(err, synth.ErrAsymmetricCoefficients) {
		t.Fatalf("Sync err = %v, want ErrAsymmetricCoefficients", err)
	}
	if !s.Coefficients().Equal(good, 0) {
		t.Fatalf("coefficients changed to %v after failure", s.Coefficients())
	}
	if sink.count() != 1 {
		t.Fatalf("sink calls = %d, want 1", sink.count())
	}
	if f := s.Frame(); !errors.Is(f.Err, synth.ErrAsymmetricCoefficients) {
		t.Fatalf("frame error = %v", f.Err)
	}

	// Moving back onto the real axis recovers.
	_ = s.MoveTo(ref, polezero.Pt(0.5, 0))
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync after recovery: %v", err)
	}
	if s.Err() != nil {
		t.Fatalf("Err = %v after recovery", s.Err())
	}
}

func TestRejectInvalidRevertsMove(t *testing.T) {
	s, _ := newTestSession(t, WithPolicy(polezero.PolicyConjugate), WithRejectInvalid(true))
	ref, _ := s.Add(polezero.Pole)
	if err := s.MoveTo(ref, polezero.Pt(0.5, 0.3)); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}

	err := s.MoveTo(ref, polezero.Pt(1.5, 0.3))
	if !errors.Is(err, synth.ErrUnstableFilter) {
		t.Fatalf("err = %v, want ErrUnstableFilter", err)
	}
	got := s.Model().Points(polezero.Pole)
	want := []polezero.Point{polezero.Pt(0.5, 0.3), polezero.Pt(0.5, -0.3)}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("poles = %v, want %v", got, want)
	}
}

func TestRejectInvalidAllowsMovesInFailingModel(t *testing.T) {
	s, _ := newTestSession(t, WithPolicy(polezero.PolicyConjugate), WithRejectInvalid(true))
	if err := s.Load([]polezero.Point{polezero.Pt(1.5, 0)}, []polezero.Point{polezero.Pt(0, 0)}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	zero := polezero.Ref{Kind: polezero.Zero, Index: 0}
	if err := s.MoveTo(zero, polezero.Pt(-0.5, 0)); err != nil {
		t.Fatalf("MoveTo in failing model: %v", err)
	}
	if got, _ := s.Model().At(zero); got != polezero.Pt(-0.5, 0) {
		t.Fatalf("zero at %v, want (-0.5+0i)", got)
	}

	pole := polezero.Ref{Kind: polezero.Pole, Index: 0}
	if err := s.MoveTo(pole, polezero.Pt(0.5, 0)); err != nil {
		t.Fatalf("MoveTo back inside: %v", err)
	}
	if err := s.MoveTo(pole, polezero.Pt(1.2, 0)); !errors.Is(err, synth.ErrUnstableFilter) {
		t.Fatalf("err = %v, want ErrUnstableFilter once the model is valid", err)
	}
}

func TestRejectInvalidIgnoredUnderFreePolicy(t *testing.T) {
	s, _ := newTestSession(t, WithPolicy(polezero.PolicyFree), WithRejectInvalid(true))
	ref, _ := s.Add(polezero.Pole)
	if err := s.MoveTo(ref, polezero.Pt(0.5, 0.3)); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	if got, _ := s.Model().At(ref); got != polezero.Pt(0.5, 0.3) {
		t.Fatalf("pole at %v, want (0.5+0.3i)", got)
	}
}

func TestRemoveReleasesEngagement(t *testing.T) {
	s, _ := newTestSession(t)
	ref, _ := s.Add(polezero.Zero)
	s.PointerDown(200, 200)
	if err := s.Remove(ref); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := s.Engaged(); ok {
		t.Fatal("engagement survived removal")
	}
	if err := s.Remove(ref); !errors.Is(err, polezero.ErrInvalidIndex) {
		t.Fatalf("second Remove err = %v, want ErrInvalidIndex", err)
	}
}

func TestLoadCoefficientsReproducesInput(t *testing.T) {
	want, err := synth.Normalize(
		[]float64{0.00020298, 0.0004059599, 0.00020298},
		[]float64{1.0126964558, -1.9991880801, 0.9873035442},
	)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	s, sink := newTestSession(t, WithPolicy(polezero.PolicyConjugate))
	if err := s.LoadCoefficients(want); err != nil {
		t.Fatalf("LoadCoefficients: %v", err)
	}
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := sink.last(); !got.Equal(want, 1e-9) {
		t.Fatalf("synced %v, want %v", got, want)
	}
	if s.Model().Len(polezero.Pole) != 2 || s.Model().Len(polezero.Zero) != 2 {
		t.Fatalf("loaded %d poles and %d zeros", s.Model().Len(polezero.Pole), s.Model().Len(polezero.Zero))
	}

	s.Clear()
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync after Clear: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, sink.last().Feedforward, []float64{1}, 0)
}

func TestLoadCoefficientsKeepsSilence(t *testing.T) {
	silent := synth.Coefficients{Feedforward: []float64{0, 0}, Feedback: []float64{1, -0.5}}
	s, sink := newTestSession(t, WithPolicy(polezero.PolicyConjugate))
	if err := s.LoadCoefficients(silent); err != nil {
		t.Fatalf("LoadCoefficients: %v", err)
	}
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	got := sink.last()
	testutil.RequireSliceNearlyEqual(t, got.Feedforward, []float64{0, 0}, 0)
	testutil.RequireSliceNearlyEqual(t, got.Feedback, []float64{1, -0.5}, 1e-15)
}

func TestReconfigureForcesResync(t *testing.T) {
	s, sink := newTestSession(t)
	ref, _ := s.Add(polezero.Pole)
	_ = s.MoveTo(ref, polezero.Pt(0.5, 0))
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	s.Reconfigure(Settings{Synthesizer: synth.New(synth.WithNormalization(synth.NormalizeDC), synth.WithGain(0.5))})
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if sink.count() != 2 {
		t.Fatalf("sink calls = %d, want 2", sink.count())
	}
	// H(1) = b0 / (1 - 0.5) must be 0.5.
	testutil.RequireSliceNearlyEqual(t, sink.last().Feedforward, []float64{0.25, 0}, 1e-15)
	if s.Settings().HitThreshold != DefaultHitThreshold {
		t.Fatalf("threshold = %v, want default kept", s.Settings().HitThreshold)
	}
}

func TestTickRendersFrame(t *testing.T) {
	var frames []Frame
	s, _ := newTestSession(t, WithRenderer(RendererFunc(func(f Frame) {
		frames = append(frames, f)
	})))
	_, _ = s.Add(polezero.Zero)
	s.PointerDown(200, 200)

	f := s.Tick()
	if len(frames) != 1 {
		t.Fatalf("rendered %d frames, want 1", len(frames))
	}
	if len(f.Zeros) != 1 || !f.Engaging || f.Engaged.Kind != polezero.Zero {
		t.Fatalf("frame = %+v", f)
	}
	testutil.RequireSliceNearlyEqual(t, f.Coefficients.Feedforward, []float64{1, 0}, 0)
	if f.Viewport.Scale() != 100 {
		t.Fatalf("frame scale = %v, want 100", f.Viewport.Scale())
	}
}

func TestLoadDemo(t *testing.T) {
	s, sink := newTestSession(t, WithPolicy(polezero.PolicyConjugate))
	if err := s.LoadDemo(); err != nil {
		t.Fatalf("LoadDemo: %v", err)
	}
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	c := sink.last()
	if !c.Equal(DemoCoefficients(), 1e-9) {
		t.Fatalf("synced %v, want demo %v", c, DemoCoefficients())
	}
	if dc := c.MagnitudeDB(0, 48000); dc > 0.01 || dc < -0.01 {
		t.Fatalf("demo DC gain = %v dB, want 0", dc)
	}
}
