package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/filter-playground/internal/polyroot"
)

// Coefficients holds the normalized transfer function
//
//	H(z) = (b0 + b1 z^-1 + ... + bN z^-N) / (1 + a1 z^-1 + ... + aN z^-N)
//
// Feedforward holds b, Feedback holds a. Both have length Order()+1 and
// Feedback[0] is 1.
type Coefficients struct {
	Feedforward []float64
	Feedback    []float64
}

// Order returns the filter order.
func (c Coefficients) Order() int {
	n := max(len(c.Feedforward), len(c.Feedback))
	if n == 0 {
		return 0
	}
	return n - 1
}

// Clone returns a deep copy.
func (c Coefficients) Clone() Coefficients {
	return Coefficients{
		Feedforward: append([]float64(nil), c.Feedforward...),
		Feedback:    append([]float64(nil), c.Feedback...),
	}
}

// Equal reports whether both vectors have the same length and every
// coefficient differs by at most tol.
func (c Coefficients) Equal(other Coefficients, tol float64) bool {
	return equalSlice(c.Feedforward, other.Feedforward, tol) &&
		equalSlice(c.Feedback, other.Feedback, tol)
}

// IsZero reports whether c holds no coefficients.
func (c Coefficients) IsZero() bool {
	return len(c.Feedforward) == 0 && len(c.Feedback) == 0
}

func equalSlice(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// Synthesizer turns root sets into coefficients. The zero value is not
// usable; construct with New.
type Synthesizer struct {
	cfg Config
}

// New returns a Synthesizer configured by opts.
func New(opts ...Option) *Synthesizer {
	return &Synthesizer{cfg: ApplyOptions(opts...)}
}

// Config returns the active configuration.
func (s *Synthesizer) Config() Config {
	return s.cfg
}

// Synthesize builds coefficients from zeros and poles using a default
// Synthesizer.
func Synthesize(zeros, poles []complex128) (Coefficients, error) {
	return New().Synthesize(zeros, poles)
}

// Synthesize expands the zeros into the feed-forward vector and the poles
// into the feedback vector. Empty sets yield the identity filter {[g], [1]}.
func (s *Synthesizer) Synthesize(zeros, poles []complex128) (Coefficients, error) {
	if err := checkRoots("zero", zeros); err != nil {
		return Coefficients{}, err
	}
	if err := checkRoots("pole", poles); err != nil {
		return Coefficients{}, err
	}

	if s.cfg.RequireStable {
		for i, p := range poles {
			if r := cmplx.Abs(p); r >= 1 {
				return Coefficients{}, fmt.Errorf("%w: pole %d at %v has radius %g", ErrUnstableFilter, i, p, r)
			}
		}
	}

	order := max(len(zeros), len(poles))

	ff, err := s.realize("feedforward", polyroot.Expand(zeros), order+1)
	if err != nil {
		return Coefficients{}, err
	}
	fb, err := s.realize("feedback", polyroot.Expand(poles), order+1)
	if err != nil {
		return Coefficients{}, err
	}

	if a0 := fb[0]; a0 != 1 {
		for i := range ff {
			ff[i] /= a0
		}
		for i := range fb {
			fb[i] /= a0
		}
	}

	c := Coefficients{Feedforward: ff, Feedback: fb}
	s.applyGain(&c)
	return c, nil
}

// realize drops the imaginary parts of c after checking they are residue
// only, and pads the result with zero taps up to n.
func (s *Synthesizer) realize(name string, c []complex128, n int) ([]float64, error) {
	out := make([]float64, n)
	for i, v := range c {
		re, im := real(v), imag(v)
		if math.Abs(im) > s.cfg.Tolerance*math.Max(1, math.Abs(re)) {
			return nil, fmt.Errorf("%w: %s[%d] = %v", ErrAsymmetricCoefficients, name, i, v)
		}
		out[i] = re
	}
	return out, nil
}

func (s *Synthesizer) applyGain(c *Coefficients) {
	scale := s.cfg.Gain
	switch s.cfg.Normalization {
	case NormalizeDC:
		ref := math.Abs(dcGain(*c))
		if !usableReference(ref) {
			return
		}
		scale /= ref
	case NormalizePeak:
		ref := peakGain(*c)
		if !usableReference(ref) {
			return
		}
		scale /= ref
	}

	if scale == 1 {
		return
	}
	for i := range c.Feedforward {
		c.Feedforward[i] *= scale
	}
}

func usableReference(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func dcGain(c Coefficients) float64 {
	var num, den float64
	for _, b := range c.Feedforward {
		num += b
	}
	for _, a := range c.Feedback {
		den += a
	}
	if den == 0 {
		return math.Inf(1)
	}
	return num / den
}

// peakGain returns the maximum magnitude response on a grid of at least
// minPeakFFTSize bins.
func peakGain(c Coefficients) float64 {
	mag, err := c.MagnitudeResponse(nextPow2(max(minPeakFFTSize, len(c.Feedback), len(c.Feedforward))))
	if err != nil {
		return 0
	}
	peak := 0.0
	for _, m := range mag {
		if math.IsNaN(m) {
			return 0
		}
		peak = math.Max(peak, m)
	}
	return peak
}

const minPeakFFTSize = 4096

// Normalize converts raw coefficient vectors into Coefficients: both are
// divided by fb[0] and padded with zero taps to equal length.
func Normalize(ff, fb []float64) (Coefficients, error) {
	if err := validateVectors(ff, fb); err != nil {
		return Coefficients{}, err
	}
	n := max(len(ff), len(fb))
	out := Coefficients{
		Feedforward: make([]float64, n),
		Feedback:    make([]float64, n),
	}
	a0 := fb[0]
	for i, b := range ff {
		out.Feedforward[i] = b / a0
	}
	for i, a := range fb {
		out.Feedback[i] = a / a0
	}
	out.Feedback[0] = 1
	return out, nil
}

// MaxRadius returns the largest |p| over poles, or 0 for an empty set.
func MaxRadius(poles []complex128) float64 {
	r := 0.0
	for _, p := range poles {
		r = math.Max(r, cmplx.Abs(p))
	}
	return r
}

// Stable reports whether every pole lies strictly inside the unit circle.
func Stable(poles []complex128) bool {
	return MaxRadius(poles) < 1
}
