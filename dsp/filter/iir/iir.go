// Package iir runs arbitrary-order IIR filters given as feed-forward and
// feedback coefficient vectors.
package iir

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCoefficients is returned when either vector is empty.
	ErrEmptyCoefficients = errors.New("iir: empty coefficients")
	// ErrZeroLeadingFeedback is returned when the leading feedback
	// coefficient is zero.
	ErrZeroLeadingFeedback = errors.New("iir: leading feedback coefficient is zero")
)

// Filter is a Direct Form II Transposed filter of any order:
//
//	y    = b[0]*x + d[0]
//	d[k] = b[k+1]*x - a[k+1]*y + d[k+1]
//
// Coefficients are normalized so that a[0] == 1 and both vectors share one
// length. A Filter is not safe for concurrent use.
type Filter struct {
	b, a []float64
	d    []float64
}

// New returns a Filter with zero state. The vectors are copied, padded to
// equal length and divided by fb[0].
func New(ff, fb []float64) (*Filter, error) {
	b, a, err := normalize(ff, fb)
	if err != nil {
		return nil, err
	}
	return &Filter{b: b, a: a, d: make([]float64, len(b)-1)}, nil
}

func normalize(ff, fb []float64) (b, a []float64, err error) {
	if len(ff) == 0 || len(fb) == 0 {
		return nil, nil, fmt.Errorf("%w: feedforward=%d feedback=%d", ErrEmptyCoefficients, len(ff), len(fb))
	}
	if fb[0] == 0 {
		return nil, nil, ErrZeroLeadingFeedback
	}
	n := max(len(ff), len(fb))
	b = make([]float64, n)
	a = make([]float64, n)
	a0 := fb[0]
	for i, v := range ff {
		b[i] = v / a0
	}
	for i, v := range fb {
		a[i] = v / a0
	}
	a[0] = 1
	return b, a, nil
}

// Order returns the filter order, the number of state values.
func (f *Filter) Order() int {
	return len(f.d)
}

// Coefficients returns copies of the normalized vectors.
func (f *Filter) Coefficients() (ff, fb []float64) {
	return append([]float64(nil), f.b...), append([]float64(nil), f.a...)
}

// SetCoefficients replaces the coefficients. When the order is unchanged the
// delay line is kept so that parameter sweeps stay continuous; otherwise it
// is cleared and reset reports true.
func (f *Filter) SetCoefficients(ff, fb []float64) (reset bool, err error) {
	b, a, err := normalize(ff, fb)
	if err != nil {
		return false, err
	}
	f.b, f.a = b, a
	if len(f.d) == len(b)-1 {
		return false, nil
	}
	f.d = make([]float64, len(b)-1)
	return true, nil
}

// ProcessSample filters one input sample and returns the output.
func (f *Filter) ProcessSample(x float64) float64 {
	y := f.b[0] * x
	n := len(f.d)
	if n == 0 {
		return y
	}
	y += f.d[0]
	for k := 0; k < n-1; k++ {
		f.d[k] = f.b[k+1]*x - f.a[k+1]*y + f.d[k+1]
	}
	f.d[n-1] = f.b[n]*x - f.a[n]*y
	return y
}

// ProcessBlock filters buf in place. Denormal state values are flushed at
// the end of the block.
func (f *Filter) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
	f.flush()
}

// ProcessBlockTo filters src into dst. dst must be at least as long as src.
func (f *Filter) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}
	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
	f.flush()
}

// Reset clears the delay line.
func (f *Filter) Reset() {
	clear(f.d)
}

// State returns a copy of the delay line.
func (f *Filter) State() []float64 {
	return append([]float64(nil), f.d...)
}

// SetState restores a delay line saved with State. Extra values are
// ignored, missing ones are zero.
func (f *Filter) SetState(state []float64) {
	clear(f.d)
	copy(f.d, state)
}

// ImpulseResponse returns the first n samples of the impulse response. The
// filter state is saved and restored.
func (f *Filter) ImpulseResponse(n int) []float64 {
	if n <= 0 {
		return nil
	}
	saved := f.State()
	f.Reset()
	ir := make([]float64, n)
	ir[0] = f.ProcessSample(1)
	for i := 1; i < n; i++ {
		ir[i] = f.ProcessSample(0)
	}
	f.SetState(saved)
	return ir
}

func (f *Filter) flush() {
	const epsilon = 1e-30
	for i, v := range f.d {
		if v > -epsilon && v < epsilon {
			f.d[i] = 0
		}
	}
}
