// Package editor holds the interactive pole-zero editing session: the model,
// the canvas transform, the single engaged point and the coefficient sync
// towards the audio stage.
package editor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cwbudde/filter-playground/dsp/filter/synth"
	"github.com/cwbudde/filter-playground/dsp/polezero"
)

// DefaultHitThreshold is the per-axis hit box half-width in plane units.
const DefaultHitThreshold = 0.1

// CoefficientSink receives every successfully synthesized coefficient set.
// It is called on the session goroutine and must not block.
type CoefficientSink interface {
	SetCoefficients(c synth.Coefficients)
}

// Renderer draws a frame. It is called on the session goroutine.
type Renderer interface {
	Render(f Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

// Render calls fn(f).
func (fn RendererFunc) Render(f Frame) { fn(f) }

// Frame is everything a renderer needs for one redraw.
type Frame struct {
	Poles        []polezero.Point
	Zeros        []polezero.Point
	Engaged      polezero.Ref
	Engaging     bool
	Coefficients synth.Coefficients
	Err          error
	Version      uint64
	Viewport     polezero.Viewport
}

// Settings are the session parameters that can change while it runs.
type Settings struct {
	HitThreshold  float64
	Synthesizer   *synth.Synthesizer
	RejectInvalid bool
}

// Session is one editing session. It is not safe for concurrent use; run it
// behind a Loop or serialize calls otherwise.
type Session struct {
	model    *polezero.Model
	viewport polezero.Viewport
	settings Settings
	policy   polezero.Policy
	sink     CoefficientSink
	renderer Renderer
	logger   *slog.Logger

	engaged  polezero.Ref
	engaging bool

	// gain and delay carry the part of loaded coefficients that roots alone
	// do not describe.
	gain  float64
	delay int

	primed  bool
	synced  uint64
	coeffs  synth.Coefficients
	lastErr error
}

// Option configures a Session.
type Option func(*Session)

// WithPolicy selects the conjugate policy of the session model.
func WithPolicy(p polezero.Policy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithHitThreshold sets the hit box half-width in plane units.
func WithHitThreshold(t float64) Option {
	return func(s *Session) {
		if t > 0 {
			s.settings.HitThreshold = t
		}
	}
}

// WithSynthesizer sets the coefficient synthesizer.
func WithSynthesizer(syn *synth.Synthesizer) Option {
	return func(s *Session) {
		if syn != nil {
			s.settings.Synthesizer = syn
		}
	}
}

// WithRejectInvalid makes moves that break synthesis revert instead of
// leaving the model in a state the audio stage cannot follow.
func WithRejectInvalid(reject bool) Option {
	return func(s *Session) {
		s.settings.RejectInvalid = reject
	}
}

// WithSink sets the coefficient receiver.
func WithSink(sink CoefficientSink) Option {
	return func(s *Session) {
		s.sink = sink
	}
}

// WithRenderer sets the frame receiver used by Tick and Redraw.
func WithRenderer(r Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession starts an empty session on viewport.
func NewSession(viewport polezero.Viewport, opts ...Option) *Session {
	s := &Session{
		viewport: viewport,
		settings: Settings{
			HitThreshold: DefaultHitThreshold,
			Synthesizer:  synth.New(),
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		gain:   1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.model = polezero.NewModel(polezero.WithPolicy(s.policy))
	return s
}

// Model exposes the underlying model for read access.
func (s *Session) Model() *polezero.Model { return s.model }

// Viewport returns the canvas transform.
func (s *Session) Viewport() polezero.Viewport { return s.viewport }

// Settings returns the current settings.
func (s *Session) Settings() Settings { return s.settings }

// Engaged returns the engaged point, if any.
func (s *Session) Engaged() (polezero.Ref, bool) {
	return s.engaged, s.engaging
}

// PointerDown engages the point under the canvas position (x, y). Poles win
// over zeros; a press on empty canvas releases any engagement.
func (s *Session) PointerDown(x, y float64) (polezero.Ref, bool) {
	c := s.viewport.ToPlane(x, y)
	ref, ok := s.model.HitTest(c, s.settings.HitThreshold)
	s.engaged, s.engaging = ref, ok
	if ok {
		s.logger.Debug("point engaged", "ref", ref.String(), "at", c.String())
	}
	return ref, ok
}

// PointerMove moves the engaged point to the canvas position (x, y). Without
// an engaged point it does nothing.
func (s *Session) PointerMove(x, y float64) error {
	if !s.engaging {
		return nil
	}
	return s.MoveTo(s.engaged, s.viewport.ToPlane(x, y))
}

// PointerUp releases the engaged point.
func (s *Session) PointerUp() {
	s.engaging = false
}

// MoveTo places the point r at plane coordinate p. With RejectInvalid set
// under PolicyConjugate, a move that turns a synthesizable model into one
// that cannot be synthesized is reverted and the synthesis error returned.
// Moves within an already failing model are accepted. Under PolicyFree
// RejectInvalid is ignored, since any point leaving the real axis breaks
// symmetry until its mirror is placed.
func (s *Session) MoveTo(r polezero.Ref, p polezero.Point) error {
	if !p.IsFinite() {
		return fmt.Errorf("move %s: non-finite position %v", r, p)
	}
	old, err := s.model.At(r)
	if err != nil {
		return err
	}
	guard := s.settings.RejectInvalid && s.policy == polezero.PolicyConjugate
	var wasValid bool
	if guard {
		_, err := s.synthesize(s.model.Snapshot())
		wasValid = err == nil
	}
	if err := s.model.Move(r, p); err != nil {
		return err
	}
	if !wasValid {
		return nil
	}
	if _, err := s.synthesize(s.model.Snapshot()); err != nil {
		if rerr := s.model.Move(r, old); rerr != nil {
			return errors.Join(err, rerr)
		}
		return fmt.Errorf("move %s rejected: %w", r, err)
	}
	return nil
}

// Add appends a point at the origin following the session policy.
func (s *Session) Add(k polezero.Kind) (polezero.Ref, error) {
	return s.model.Add(k)
}

// AddReal appends an unlinked point at the origin.
func (s *Session) AddReal(k polezero.Kind) (polezero.Ref, error) {
	return s.model.AddReal(k)
}

// Remove deletes a point and its partner and releases the engagement,
// since indices shift.
func (s *Session) Remove(r polezero.Ref) error {
	if err := s.model.Remove(r); err != nil {
		return err
	}
	s.engaging = false
	return nil
}

// Clear removes every point and any loaded gain.
func (s *Session) Clear() {
	s.model.Clear()
	s.engaging = false
	s.gain, s.delay = 1, 0
}

// Load replaces both sets with unity gain.
func (s *Session) Load(poles, zeros []polezero.Point) error {
	if err := s.model.Load(poles, zeros); err != nil {
		return err
	}
	s.engaging = false
	s.gain, s.delay = 1, 0
	return nil
}

// LoadCoefficients factors c into roots and loads them. Gain and delay of c
// are kept so that the next sync reproduces c.
func (s *Session) LoadCoefficients(c synth.Coefficients) error {
	roots, err := synth.Analyze(c)
	if err != nil {
		return fmt.Errorf("load coefficients: %w", err)
	}
	if err := s.model.Load(polezero.FromComplexes(roots.Poles), polezero.FromComplexes(roots.Zeros)); err != nil {
		return fmt.Errorf("load coefficients: %w", err)
	}
	s.engaging = false
	s.gain, s.delay = roots.Gain, roots.Delay
	return nil
}

// Reconfigure applies new settings and forces a resync on the next Sync.
func (s *Session) Reconfigure(set Settings) {
	if set.HitThreshold > 0 {
		s.settings.HitThreshold = set.HitThreshold
	}
	if set.Synthesizer != nil {
		s.settings.Synthesizer = set.Synthesizer
	}
	s.settings.RejectInvalid = set.RejectInvalid
	s.primed = false
}

// Dirty reports whether the model changed since the last Sync.
func (s *Session) Dirty() bool {
	return !s.primed || s.model.Version() != s.synced
}

// Sync synthesizes coefficients when the model changed since the last call
// and hands them to the sink. On failure the previous coefficients stay in
// effect and the error is kept for the next frames.
func (s *Session) Sync() error {
	if !s.Dirty() {
		return s.lastErr
	}
	snap := s.model.Snapshot()
	s.primed, s.synced = true, snap.Version

	c, err := s.synthesize(snap)
	if err != nil {
		if s.lastErr == nil {
			s.logger.Warn("coefficient synthesis failed", "version", snap.Version, "error", err)
		}
		s.lastErr = err
		return err
	}
	if s.lastErr != nil {
		s.logger.Info("coefficient synthesis recovered", "version", snap.Version)
	}
	s.lastErr = nil
	s.coeffs = c
	s.logger.Debug("coefficients updated", "version", snap.Version, "order", c.Order())
	if s.sink != nil {
		s.sink.SetCoefficients(c.Clone())
	}
	return nil
}

func (s *Session) synthesize(snap polezero.Snapshot) (synth.Coefficients, error) {
	roots := synth.Roots{
		Zeros: snap.ZeroRoots(),
		Poles: snap.PoleRoots(),
		Gain:  s.gain,
		Delay: s.delay,
	}
	return roots.Synthesize(s.settings.Synthesizer)
}

// Coefficients returns the last successfully synthesized coefficients.
func (s *Session) Coefficients() synth.Coefficients {
	return s.coeffs.Clone()
}

// Err returns the error of the last Sync, if it failed.
func (s *Session) Err() error {
	return s.lastErr
}

// Frame captures the current state for rendering.
func (s *Session) Frame() Frame {
	snap := s.model.Snapshot()
	return Frame{
		Poles:        snap.Poles,
		Zeros:        snap.Zeros,
		Engaged:      s.engaged,
		Engaging:     s.engaging,
		Coefficients: s.coeffs.Clone(),
		Err:          s.lastErr,
		Version:      snap.Version,
		Viewport:     s.viewport,
	}
}

// Redraw hands the current frame to the renderer.
func (s *Session) Redraw() Frame {
	f := s.Frame()
	if s.renderer != nil {
		s.renderer.Render(f)
	}
	return f
}

// Tick syncs and redraws. Synthesis errors are reported through the frame.
func (s *Session) Tick() Frame {
	_ = s.Sync()
	return s.Redraw()
}
