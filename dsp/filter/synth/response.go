package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Response computes the complex frequency response H(e^jw) at the given
// frequency (Hz) and sample rate (Hz).
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	x := cmplx.Exp(complex(0, -w))
	return evalTaps(c.Feedforward, x) / evalTaps(c.Feedback, x)
}

// MagnitudeDB returns 20*log10(|H(f)|).
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return toDB(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// Phase returns the phase response in radians.
func (c Coefficients) Phase(freqHz, sampleRate float64) float64 {
	return cmplx.Phase(c.Response(freqHz, sampleRate))
}

// MagnitudeResponse returns |H| on fftSize/2+1 equally spaced bins from DC
// to Nyquist. It transforms both zero-padded vectors and divides the bins.
func (c Coefficients) MagnitudeResponse(fftSize int) ([]float64, error) {
	if err := validateVectors(c.Feedforward, c.Feedback); err != nil {
		return nil, err
	}
	if fftSize < 2 || fftSize&(fftSize-1) != 0 || fftSize < len(c.Feedforward) || fftSize < len(c.Feedback) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("magnitude response fft plan: %w", err)
	}

	num, err := transform(plan, c.Feedforward, fftSize)
	if err != nil {
		return nil, err
	}
	den, err := transform(plan, c.Feedback, fftSize)
	if err != nil {
		return nil, err
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		h := num[k] / den[k]
		re[k] = real(h)
		im[k] = imag(h)
	}

	out := make([]float64, bins)
	vecmath.Magnitude(out, re, im)
	return out, nil
}

// MagnitudeResponseDB is MagnitudeResponse in decibels.
func (c Coefficients) MagnitudeResponseDB(fftSize int) ([]float64, error) {
	mag, err := c.MagnitudeResponse(fftSize)
	if err != nil {
		return nil, err
	}
	for i, m := range mag {
		mag[i] = toDB(m)
	}
	return mag, nil
}

func transform(plan *algofft.Plan[complex128], taps []float64, n int) ([]complex128, error) {
	in := make([]complex128, n)
	for i, t := range taps {
		in[i] = complex(t, 0)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("magnitude response fft: %w", err)
	}
	return out, nil
}

// evalTaps evaluates sum(taps[k] * x^k) with Horner's scheme.
func evalTaps(taps []float64, x complex128) complex128 {
	var acc complex128
	for i := len(taps) - 1; i >= 0; i-- {
		acc = acc*x + complex(taps[i], 0)
	}
	return acc
}

// toDB converts a magnitude to decibels. Zero maps to -Inf.
func toDB(mag float64) float64 {
	if mag <= 0 {
		return math.Inf(-1)
	}
	return 20 * mathLog10(mag)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
