// Package polyroot expands polynomials from their roots and finds the roots
// of polynomials. It is shared by the coefficient synthesizer and its
// analysis counterpart.
package polyroot

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrDegeneratePolynomial is returned when a polynomial has a zero leading
// coefficient or the root iteration does not converge.
var ErrDegeneratePolynomial = errors.New("polyroot: degenerate polynomial")

// ConjugateTol is the relative tolerance used when pairing conjugate roots.
const ConjugateTol = 1e-7

// Expand returns the coefficients of prod(1 - r*x) over roots, in ascending
// powers of x. With x = z^-1 these are the taps of a monic filter
// polynomial whose roots in z are the given values.
func Expand(roots []complex128) []complex128 {
	c := make([]complex128, len(roots)+1)
	c[0] = 1
	for n, r := range roots {
		for k := n + 1; k >= 1; k-- {
			c[k] -= r * c[k-1]
		}
	}
	return c
}

// Roots returns all roots of the polynomial coeff[0]*x^n + ... + coeff[n].
// Linear and quadratic polynomials are solved in closed form; higher
// degrees use Durand-Kerner iteration.
func Roots(coeff []complex128) ([]complex128, error) {
	if len(coeff) == 0 || coeff[0] == 0 {
		return nil, ErrDegeneratePolynomial
	}

	switch len(coeff) {
	case 1:
		return nil, nil
	case 2:
		return []complex128{-coeff[1] / coeff[0]}, nil
	case 3:
		r := quadraticRoots(coeff[0], coeff[1], coeff[2])
		return r[:], nil
	default:
		return DurandKerner(coeff)
	}
}

func quadraticRoots(a, b, c complex128) [2]complex128 {
	sq := cmplx.Sqrt(b*b - 4*a*c)
	den := 2 * a
	return [2]complex128{(-b + sq) / den, (-b - sq) / den}
}

// DurandKerner finds all roots simultaneously using Weierstrass iteration.
// Coefficients are in descending power order.
func DurandKerner(coeff []complex128) ([]complex128, error) {
	if len(coeff) < 2 || coeff[0] == 0 {
		return nil, ErrDegeneratePolynomial
	}

	n := len(coeff) - 1
	monic := make([]complex128, len(coeff))
	for i, c := range coeff {
		monic[i] = c / coeff[0]
	}

	// Start on a circle enclosing every root (Cauchy-style bound).
	radius := 1.0
	for _, c := range monic[1:] {
		radius = math.Max(radius, cmplx.Abs(c))
	}

	roots := make([]complex128, n)
	for i := range roots {
		angle := 2*math.Pi*float64(i)/float64(n) + 0.4
		r := radius * (1 + 0.05*float64(i)/float64(n))
		roots[i] = cmplx.Rect(r, angle)
	}

	const (
		maxIter = 1000
		tol     = 1e-13
	)

	for range maxIter {
		worst := 0.0
		for i := range roots {
			den := complex(1, 0)
			for j := range roots {
				if j != i {
					den *= roots[i] - roots[j]
				}
			}
			if den == 0 {
				roots[i] += complex(1e-9, 1e-9)
				worst = math.Inf(1)
				continue
			}

			delta := PolyEval(monic, roots[i]) / den
			roots[i] -= delta
			worst = math.Max(worst, cmplx.Abs(delta))
		}
		if worst < tol {
			return roots, nil
		}
	}

	for _, r := range roots {
		if cmplx.Abs(PolyEval(monic, r)) > 1e-6 {
			return nil, ErrDegeneratePolynomial
		}
	}
	return roots, nil
}

// PolyEval evaluates coeff[0]*x^n + ... + coeff[n] using Horner's scheme.
func PolyEval(coeff []complex128, x complex128) complex128 {
	if len(coeff) == 0 {
		return 0
	}
	v := coeff[0]
	for _, c := range coeff[1:] {
		v = v*x + c
	}
	return v
}

// IsConjugate reports whether a and b are conjugates within a tolerance
// relative to their magnitude.
func IsConjugate(a, b complex128, tol float64) bool {
	if math.Abs(real(a)-real(b)) > tol*math.Max(1, math.Abs(real(a))) {
		return false
	}
	return math.Abs(imag(a)+imag(b)) <= tol*math.Max(1, math.Abs(imag(a)))
}

// SnapConjugates returns a copy of roots in which nearly-real roots lie
// exactly on the real axis and nearly-conjugate pairs are exact conjugates.
// Roots without a partner are returned unchanged.
func SnapConjugates(roots []complex128, tol float64) []complex128 {
	out := make([]complex128, len(roots))
	copy(out, roots)

	done := make([]bool, len(out))
	for i, r := range out {
		if done[i] {
			continue
		}
		done[i] = true

		if math.Abs(imag(r)) <= tol*math.Max(1, math.Abs(real(r))) {
			out[i] = complex(real(r), 0)
			continue
		}

		best, bestDist := -1, math.Inf(1)
		for j := i + 1; j < len(out); j++ {
			if done[j] {
				continue
			}
			if d := cmplx.Abs(out[j] - cmplx.Conj(r)); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best < 0 || !IsConjugate(r, out[best], tol) {
			continue
		}

		done[best] = true
		re := (real(r) + real(out[best])) / 2
		im := (imag(r) - imag(out[best])) / 2
		out[i] = complex(re, im)
		out[best] = complex(re, -im)
	}
	return out
}
