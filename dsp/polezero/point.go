package polezero

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a location on the z-plane.
type Point struct {
	Re, Im float64
}

// Pt returns the point re + j*im.
func Pt(re, im float64) Point {
	return Point{Re: re, Im: im}
}

// FromComplex converts c to a Point.
func FromComplex(c complex128) Point {
	return Point{Re: real(c), Im: imag(c)}
}

// Complex returns p as a complex number.
func (p Point) Complex() complex128 {
	return complex(p.Re, p.Im)
}

// Conj returns the conjugate partner of p.
func (p Point) Conj() Point {
	return Point{Re: p.Re, Im: -p.Im}
}

// Abs returns the distance of p from the origin.
func (p Point) Abs() float64 {
	return math.Hypot(p.Re, p.Im)
}

// IsReal reports whether p lies on the real axis within tol.
func (p Point) IsReal(tol float64) bool {
	return math.Abs(p.Im) <= tol
}

// IsFinite reports whether both coordinates are finite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.Re) && !math.IsInf(p.Re, 0) &&
		!math.IsNaN(p.Im) && !math.IsInf(p.Im, 0)
}

// IsConjugateOf reports whether q is the conjugate of p within tol on
// both axes.
func (p Point) IsConjugateOf(q Point, tol float64) bool {
	return math.Abs(p.Re-q.Re) <= tol && math.Abs(p.Im+q.Im) <= tol
}

// Within reports whether q lies inside the axis-aligned box of half-width
// threshold centred on p. Each axis is tested independently; this is not a
// radius test.
func (p Point) Within(q Point, threshold float64) bool {
	return math.Abs(p.Re-q.Re) <= threshold && math.Abs(p.Im-q.Im) <= threshold
}

func (p Point) String() string {
	return strconv.FormatComplex(p.Complex(), 'g', -1, 128)
}

// ParsePoint parses a point in Go complex literal syntax, e.g. "0.5+0.3i",
// "(0.9-0.1i)" or "-1".
func ParsePoint(s string) (Point, error) {
	c, err := strconv.ParseComplex(strings.TrimSpace(s), 128)
	if err != nil {
		return Point{}, fmt.Errorf("parse point %q: %w", s, err)
	}
	return FromComplex(c), nil
}

// Complexes converts points to complex numbers.
func Complexes(points []Point) []complex128 {
	out := make([]complex128, len(points))
	for i, p := range points {
		out[i] = p.Complex()
	}
	return out
}

// FromComplexes converts complex numbers to points.
func FromComplexes(values []complex128) []Point {
	out := make([]Point, len(values))
	for i, c := range values {
		out[i] = FromComplex(c)
	}
	return out
}

// Kind selects the pole set or the zero set.
type Kind int

const (
	Pole Kind = iota
	Zero
)

func (k Kind) String() string {
	switch k {
	case Pole:
		return "pole"
	case Zero:
		return "zero"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts "pole"/"poles" and "zero"/"zeros".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pole", "poles", "p":
		return Pole, nil
	case "zero", "zeros", "z":
		return Zero, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Policy decides how conjugate partners are maintained.
type Policy int

const (
	// PolicyFree treats every point independently. Moving one member of a
	// conjugate pair leaves the other in place.
	PolicyFree Policy = iota
	// PolicyConjugate adds points as linked conjugate pairs and moves both
	// members together. Unlinked points stay on the real axis.
	PolicyConjugate
)

func (p Policy) String() string {
	switch p {
	case PolicyFree:
		return "free"
	case PolicyConjugate:
		return "conjugate"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "free" and "conjugate".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free", "":
		return PolicyFree, nil
	case "conjugate", "conj", "paired":
		return PolicyConjugate, nil
	default:
		return 0, fmt.Errorf("unknown conjugate policy %q", s)
	}
}
