package polezero

import (
	"fmt"
	"math"
)

// DefaultTolerance decides when a point counts as real and when two points
// count as conjugates.
const DefaultTolerance = 1e-9

// Ref addresses one point of a Model.
type Ref struct {
	Kind  Kind
	Index int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s[%d]", r.Kind, r.Index)
}

// Snapshot is a consistent copy of both sets.
type Snapshot struct {
	Poles   []Point
	Zeros   []Point
	Version uint64
}

// PoleRoots returns the poles as complex numbers.
func (s Snapshot) PoleRoots() []complex128 {
	return Complexes(s.Poles)
}

// ZeroRoots returns the zeros as complex numbers.
func (s Snapshot) ZeroRoots() []complex128 {
	return Complexes(s.Zeros)
}

// Model is the editable pole-zero map. It is not safe for concurrent use;
// callers serialize access, typically on one event loop.
type Model struct {
	sets    [2]Set
	policy  Policy
	tol     float64
	version uint64
}

// Option configures a Model.
type Option func(*Model)

// WithPolicy selects how conjugate partners are maintained.
func WithPolicy(p Policy) Option {
	return func(m *Model) {
		m.policy = p
	}
}

// WithTolerance sets the realness and conjugate-match tolerance.
func WithTolerance(tol float64) Option {
	return func(m *Model) {
		if tol > 0 && !math.IsInf(tol, 0) {
			m.tol = tol
		}
	}
}

// NewModel returns an empty model.
func NewModel(opts ...Option) *Model {
	m := &Model{
		policy: PolicyFree,
		tol:    DefaultTolerance,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Policy returns the conjugate policy.
func (m *Model) Policy() Policy { return m.policy }

// Tolerance returns the realness tolerance.
func (m *Model) Tolerance() float64 { return m.tol }

// Version increases on every mutation.
func (m *Model) Version() uint64 { return m.version }

// Len returns the number of points of kind k.
func (m *Model) Len(k Kind) int {
	s, err := m.set(k)
	if err != nil {
		return 0
	}
	return s.Len()
}

// At returns the point addressed by r.
func (m *Model) At(r Ref) (Point, error) {
	s, err := m.set(r.Kind)
	if err != nil {
		return Point{}, err
	}
	p, ok := s.At(r.Index)
	if !ok {
		return Point{}, indexError(r, s.Len())
	}
	return p, nil
}

// Points returns a copy of the points of kind k.
func (m *Model) Points(k Kind) []Point {
	s, err := m.set(k)
	if err != nil {
		return nil
	}
	return s.Points()
}

// Partner returns the linked conjugate partner of r, if any.
func (m *Model) Partner(r Ref) (Ref, bool) {
	s, err := m.set(r.Kind)
	if err != nil {
		return Ref{}, false
	}
	j := s.Partner(r.Index)
	if j < 0 {
		return Ref{}, false
	}
	return Ref{Kind: r.Kind, Index: j}, true
}

// Add appends a point at the origin. Under PolicyConjugate a linked pair is
// appended and the reference of its first member is returned.
func (m *Model) Add(k Kind) (Ref, error) {
	s, err := m.set(k)
	if err != nil {
		return Ref{}, err
	}

	var i int
	if m.policy == PolicyConjugate {
		i, _ = s.AppendPair(Point{})
	} else {
		i = s.Append(Point{})
	}

	m.touch()
	return Ref{Kind: k, Index: i}, nil
}

// AddReal appends a single unlinked point at the origin. Under
// PolicyConjugate the point is kept on the real axis when moved.
func (m *Model) AddReal(k Kind) (Ref, error) {
	s, err := m.set(k)
	if err != nil {
		return Ref{}, err
	}
	i := s.Append(Point{})
	m.touch()
	return Ref{Kind: k, Index: i}, nil
}

// AddPole is Add(Pole).
func (m *Model) AddPole() Ref {
	r, _ := m.Add(Pole)
	return r
}

// AddZero is Add(Zero).
func (m *Model) AddZero() Ref {
	r, _ := m.Add(Zero)
	return r
}

// HitTest returns the first point whose per-axis distance to c is at most
// threshold on both axes. Poles are tested before zeros, and within a set
// the earliest inserted point wins.
func (m *Model) HitTest(c Point, threshold float64) (Ref, bool) {
	for _, k := range []Kind{Pole, Zero} {
		if i, ok := m.sets[k].HitTest(c, threshold); ok {
			return Ref{Kind: k, Index: i}, true
		}
	}
	return Ref{}, false
}

// Move places the point addressed by r at p. Under PolicyConjugate a linked
// partner follows to the conjugate position and an unlinked point is
// projected onto the real axis.
func (m *Model) Move(r Ref, p Point) error {
	s, err := m.set(r.Kind)
	if err != nil {
		return err
	}
	if !s.valid(r.Index) {
		return indexError(r, s.Len())
	}

	if m.policy == PolicyConjugate {
		if j := s.partner[r.Index]; j >= 0 {
			s.points[j] = p.Conj()
		} else {
			p.Im = 0
		}
	}
	s.points[r.Index] = p

	m.touch()
	return nil
}

// Remove deletes the point addressed by r and its linked partner. Indices
// of later points shift down.
func (m *Model) Remove(r Ref) error {
	s, err := m.set(r.Kind)
	if err != nil {
		return err
	}
	if !s.Remove(r.Index) {
		return indexError(r, s.Len())
	}
	m.touch()
	return nil
}

// Clear removes every point.
func (m *Model) Clear() {
	m.sets = [2]Set{}
	m.touch()
}

// Load replaces both sets. Under PolicyConjugate non-real points are linked
// to their conjugates, pairs are snapped to exact symmetry and real points
// to the axis; a non-real point without a partner fails with
// ErrUnpairedRoot and leaves the model unchanged.
func (m *Model) Load(poles, zeros []Point) error {
	var sets [2]Set
	for k, points := range [2][]Point{Pole: poles, Zero: zeros} {
		s, err := m.build(Kind(k), points)
		if err != nil {
			return err
		}
		sets[k] = s
	}
	m.sets = sets
	m.touch()
	return nil
}

// Snapshot copies both sets.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Poles:   m.sets[Pole].clone().points,
		Zeros:   m.sets[Zero].clone().points,
		Version: m.version,
	}
}

// Validate checks that every non-real point has a conjugate partner.
func (m *Model) Validate() error {
	for _, k := range []Kind{Pole, Zero} {
		s := &m.sets[k]
		if bad := s.Unpaired(m.tol); len(bad) > 0 {
			p := s.points[bad[0]]
			return fmt.Errorf("%w: %s at %v", ErrUnpairedRoot, Ref{Kind: k, Index: bad[0]}, p)
		}
	}
	return nil
}

func (m *Model) build(k Kind, points []Point) (Set, error) {
	var s Set
	if m.policy != PolicyConjugate {
		for _, p := range points {
			s.Append(p)
		}
		return s, nil
	}

	used := make([]bool, len(points))
	for i, p := range points {
		if used[i] {
			continue
		}
		used[i] = true

		if p.IsReal(m.tol) {
			s.Append(Point{Re: p.Re})
			continue
		}

		match := unlinked
		for j := i + 1; j < len(points); j++ {
			if !used[j] && p.IsConjugateOf(points[j], m.tol) {
				match = j
				break
			}
		}
		if match == unlinked {
			return Set{}, fmt.Errorf("%w: %s at %v", ErrUnpairedRoot, Ref{Kind: k, Index: i}, p)
		}
		used[match] = true

		q := points[match]
		mid := Point{Re: (p.Re + q.Re) / 2, Im: (p.Im - q.Im) / 2}
		s.AppendPair(mid)
	}
	return s, nil
}

func (m *Model) set(k Kind) (*Set, error) {
	switch k {
	case Pole, Zero:
		return &m.sets[k], nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, int(k))
	}
}

func (m *Model) touch() {
	m.version++
}
