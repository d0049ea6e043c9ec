package synth

import (
	"fmt"

	"github.com/cwbudde/filter-playground/internal/polyroot"
)

// Roots is the factored form of a coefficient set:
//
//	H(z) = Gain * z^-Delay * prod(1 - Zeros[i] z^-1) / prod(1 - Poles[i] z^-1)
//
// Roots at the origin only shift the two polynomials against each other and
// are not reported. A zero Gain describes a silent filter.
type Roots struct {
	Zeros []complex128
	Poles []complex128
	Gain  float64
	Delay int
}

// Analyze recovers zeros, poles, gain and delay from coefficient vectors.
// The vectors do not need to be normalized. Recovered conjugate pairs are
// snapped to exact conjugates.
func Analyze(c Coefficients) (Roots, error) {
	if err := validateVectors(c.Feedforward, c.Feedback); err != nil {
		return Roots{}, err
	}

	ff := trimTrailingZeros(c.Feedforward)
	fb := trimTrailingZeros(c.Feedback)

	delay := 0
	for delay < len(ff) && ff[delay] == 0 {
		delay++
	}
	if delay == len(ff) {
		// All-zero numerator: the filter is silent.
		poles, err := rootsOf(fb)
		if err != nil {
			return Roots{}, fmt.Errorf("feedback: %w", err)
		}
		return Roots{Poles: poles}, nil
	}
	ff = ff[delay:]

	zeros, err := rootsOf(ff)
	if err != nil {
		return Roots{}, fmt.Errorf("feedforward: %w", err)
	}
	poles, err := rootsOf(fb)
	if err != nil {
		return Roots{}, fmt.Errorf("feedback: %w", err)
	}

	return Roots{
		Zeros: zeros,
		Poles: poles,
		Gain:  ff[0] / fb[0],
		Delay: delay,
	}, nil
}

// Synthesize rebuilds coefficients from r with s, restoring gain and delay.
// Without normalization on s the stored gain scales the feed-forward vector
// as is, so callers building Roots by hand set Gain to 1 for unity. With
// normalization only a zero gain is kept, as silence.
func (r Roots) Synthesize(s *Synthesizer) (Coefficients, error) {
	c, err := s.Synthesize(r.Zeros, r.Poles)
	if err != nil {
		return Coefficients{}, err
	}
	if s.cfg.Normalization == NormalizeNone || r.Gain == 0 {
		for i := range c.Feedforward {
			c.Feedforward[i] *= r.Gain
		}
	}
	if r.Delay > 0 {
		ff := make([]float64, len(c.Feedforward)+r.Delay)
		copy(ff[r.Delay:], c.Feedforward)
		fb := make([]float64, len(ff))
		copy(fb, c.Feedback)
		c = Coefficients{Feedforward: ff, Feedback: fb}
	}
	return c, nil
}

// rootsOf treats taps as a polynomial in z^-1 and returns its roots in z.
func rootsOf(taps []float64) ([]complex128, error) {
	coeff := make([]complex128, len(taps))
	for i, t := range taps {
		coeff[i] = complex(t, 0)
	}
	roots, err := polyroot.Roots(coeff)
	if err != nil {
		return nil, err
	}
	return polyroot.SnapConjugates(roots, polyroot.ConjugateTol), nil
}

func trimTrailingZeros(v []float64) []float64 {
	n := len(v)
	for n > 1 && v[n-1] == 0 {
		n--
	}
	return v[:n]
}
