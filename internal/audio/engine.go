// Package audio runs the playground's audio graph: a looped white-noise
// source routed dry to the right channel and through the edited filter to
// the left channel.
package audio

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/filter-playground/dsp/filter/iir"
	"github.com/cwbudde/filter-playground/dsp/filter/synth"
	"github.com/cwbudde/filter-playground/dsp/signal"
)

const (
	defaultNoiseAmplitude = 0.5
	defaultMaster         = 0.75
	defaultFadeSeconds    = 0.01
	defaultSeed           = 1
)

// Levels are RMS values of the last rendered block.
type Levels struct {
	Left  float64
	Right float64
}

// Engine renders the audio graph. Render must be called from one goroutine;
// SetCoefficients, Coefficients, ResponseCurveDB and Levels may be called
// from any goroutine.
type Engine struct {
	sampleRate float64
	amplitude  float64
	seed       int64
	master     float64
	fadeLen    int

	noise  *signal.NoiseLoop
	filter *iir.Filter

	pending atomic.Pointer[synth.Coefficients]
	latest  atomic.Pointer[synth.Coefficients]
	levelL  atomic.Uint64
	levelR  atomic.Uint64
	resets  atomic.Uint64

	fade    []float64
	fadePos int
	dry     []float64
	wet     []float64
	outL    []float32
	outR    []float32
}

// Option configures an Engine.
type Option func(*Engine)

// WithNoiseAmplitude sets the peak amplitude of the noise source.
func WithNoiseAmplitude(a float64) Option {
	return func(e *Engine) {
		if a >= 0 {
			e.amplitude = a
		}
	}
}

// WithSeed sets the noise seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithMaster sets the output gain applied to both channels.
func WithMaster(gain float64) Option {
	return func(e *Engine) {
		e.master = clamp(gain, 0, 1)
	}
}

// WithFadeLength sets the fade-in length in samples used after the filter
// state is reset. Zero disables fading.
func WithFadeLength(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.fadeLen = n
		}
	}
}

// NewEngine creates an engine passing the noise through unfiltered until
// coefficients arrive. The noise loop is one second long.
func NewEngine(sampleRate float64, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 || math.IsInf(sampleRate, 0) || math.IsNaN(sampleRate) {
		return nil, fmt.Errorf("sample rate must be > 0: %f", sampleRate)
	}
	e := &Engine{
		sampleRate: sampleRate,
		amplitude:  defaultNoiseAmplitude,
		seed:       defaultSeed,
		master:     defaultMaster,
		fadeLen:    int(defaultFadeSeconds * sampleRate),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	noise, err := signal.NewNoiseLoop(int(sampleRate), e.amplitude, e.seed)
	if err != nil {
		return nil, fmt.Errorf("audio noise source: %w", err)
	}
	e.noise = noise

	identity := synth.Coefficients{Feedforward: []float64{1}, Feedback: []float64{1}}
	e.filter, err = iir.New(identity.Feedforward, identity.Feedback)
	if err != nil {
		return nil, err
	}
	e.latest.Store(&identity)

	e.fade = make([]float64, e.fadeLen)
	for i := range e.fade {
		e.fade[i] = float64(i+1) / float64(e.fadeLen)
	}
	e.fadePos = e.fadeLen
	return e, nil
}

// SampleRate returns the engine sample rate.
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// SetCoefficients queues c for the next Render call. Only the most recent
// set queued before a render is applied.
func (e *Engine) SetCoefficients(c synth.Coefficients) {
	c = c.Clone()
	e.latest.Store(&c)
	e.pending.Store(&c)
}

// Coefficients returns the most recently queued coefficients.
func (e *Engine) Coefficients() synth.Coefficients {
	return e.latest.Load().Clone()
}

// Levels returns the RMS of the last rendered block per channel.
func (e *Engine) Levels() Levels {
	return Levels{
		Left:  math.Float64frombits(e.levelL.Load()),
		Right: math.Float64frombits(e.levelR.Load()),
	}
}

// Resets returns how often the filter was reset because its output stopped
// being finite.
func (e *Engine) Resets() uint64 {
	return e.resets.Load()
}

// Render fills left with the filtered noise and right with the dry noise.
// Only the common length of both slices is written.
func (e *Engine) Render(left, right []float32) {
	n := min(len(left), len(right))
	if n == 0 {
		return
	}
	e.applyPending()

	if cap(e.dry) < n {
		e.dry = make([]float64, n)
		e.wet = make([]float64, n)
	}
	dry, wet := e.dry[:n], e.wet[:n]

	e.noise.Fill(dry)
	e.filter.ProcessBlockTo(wet, dry)
	if !finite(wet) {
		e.filter.Reset()
		e.resets.Add(1)
		clear(wet)
		e.fadePos = 0
	}

	if e.fadePos < e.fadeLen {
		k := min(n, e.fadeLen-e.fadePos)
		vecmath.MulBlockInPlace(wet[:k], e.fade[e.fadePos:e.fadePos+k])
		e.fadePos += k
	}

	vecmath.ScaleBlock(dry, dry, e.master)
	vecmath.ScaleBlock(wet, wet, e.master)

	var sumL, sumR float64
	for i := range n {
		l := clamp(wet[i], -1, 1)
		r := clamp(dry[i], -1, 1)
		left[i] = float32(l)
		right[i] = float32(r)
		sumL += l * l
		sumR += r * r
	}
	e.levelL.Store(math.Float64bits(math.Sqrt(sumL / float64(n))))
	e.levelR.Store(math.Float64bits(math.Sqrt(sumR / float64(n))))
}

// RenderBlock renders n samples into buffers owned by the engine and returns
// them. They stay valid until the next RenderBlock call. A non-positive n
// yields empty slices.
func (e *Engine) RenderBlock(n int) (left, right []float32) {
	if n <= 0 {
		return e.outL[:0], e.outR[:0]
	}
	if cap(e.outL) < n {
		e.outL = make([]float32, n)
		e.outR = make([]float32, n)
	}
	left, right = e.outL[:n], e.outR[:n]
	e.Render(left, right)
	return left, right
}

func (e *Engine) applyPending() {
	c := e.pending.Swap(nil)
	if c == nil {
		return
	}
	reset, err := e.filter.SetCoefficients(c.Feedforward, c.Feedback)
	if err != nil {
		return
	}
	if reset {
		e.fadePos = 0
	}
}

// ResponseCurveDB returns the magnitude response of the latest coefficients
// in dB, including the master gain, for freqs in Hz.
func (e *Engine) ResponseCurveDB(freqs []float64) []float64 {
	c := e.latest.Load()
	out := make([]float64, len(freqs))
	for i, f := range freqs {
		f = clamp(f, 1, e.sampleRate*0.49)
		mag := cmplx.Abs(c.Response(f, e.sampleRate)) * e.master
		out[i] = 20 * math.Log10(math.Max(1e-12, mag))
	}
	return out
}

func finite(buf []float64) bool {
	for _, v := range buf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
