package synth

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/cwbudde/filter-playground/internal/polyroot"
)

var (
	// ErrUnstableFilter is returned when a pole lies on or outside the unit
	// circle and stability is required.
	ErrUnstableFilter = errors.New("synth: unstable filter")
	// ErrAsymmetricCoefficients is returned when a synthesized coefficient
	// keeps an imaginary residue above tolerance, i.e. the roots are not
	// conjugate symmetric.
	ErrAsymmetricCoefficients = errors.New("synth: asymmetric coefficients")
	// ErrInvalidRoot is returned for NaN or infinite roots.
	ErrInvalidRoot = errors.New("synth: invalid root")
	// ErrEmptyCoefficients is returned for empty coefficient vectors.
	ErrEmptyCoefficients = errors.New("synth: empty coefficients")
	// ErrZeroLeadingFeedback is returned when the leading feedback
	// coefficient is zero and the vectors cannot be normalized.
	ErrZeroLeadingFeedback = errors.New("synth: leading feedback coefficient is zero")
	// ErrInvalidFFTSize is returned for FFT sizes that are not a power of
	// two or are shorter than the coefficient vectors.
	ErrInvalidFFTSize = errors.New("synth: invalid FFT size")
	// ErrDegeneratePolynomial is returned when roots cannot be recovered.
	ErrDegeneratePolynomial = polyroot.ErrDegeneratePolynomial
)

func checkRoots(kind string, roots []complex128) error {
	for i, r := range roots {
		if cmplx.IsNaN(r) || cmplx.IsInf(r) {
			return fmt.Errorf("%w: %s %d is %v", ErrInvalidRoot, kind, i, r)
		}
	}
	return nil
}

func validateVectors(ff, fb []float64) error {
	if len(ff) == 0 || len(fb) == 0 {
		return fmt.Errorf("%w: feedforward=%d feedback=%d", ErrEmptyCoefficients, len(ff), len(fb))
	}
	if fb[0] == 0 {
		return ErrZeroLeadingFeedback
	}
	return nil
}
