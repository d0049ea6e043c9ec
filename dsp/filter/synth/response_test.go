package synth

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/filter-playground/internal/testutil"
)

func TestMagnitudeResponseMatchesPointEvaluation(t *testing.T) {
	c, err := Synthesize(
		[]complex128{-1, complex(0.2, 0.9), complex(0.2, -0.9)},
		[]complex128{complex(0.8, 0.3), complex(0.8, -0.3), -0.4},
	)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	const (
		n  = 256
		sr = 48000.0
	)
	mag, err := c.MagnitudeResponse(n)
	if err != nil {
		t.Fatalf("MagnitudeResponse: %v", err)
	}
	if len(mag) != n/2+1 {
		t.Fatalf("len = %d, want %d", len(mag), n/2+1)
	}
	testutil.RequireFinite(t, mag)
	for k, m := range mag {
		want := cmplx.Abs(c.Response(float64(k)*sr/n, sr))
		if math.Abs(m-want) > 1e-9*math.Max(1, want) {
			t.Fatalf("bin %d: got %v, want %v", k, m, want)
		}
	}
}

func TestMagnitudeResponseInvalidSize(t *testing.T) {
	c := Coefficients{Feedforward: []float64{1, 2, 1}, Feedback: []float64{1, 0, 0}}
	for _, n := range []int{0, 1, 3, 100, 2} {
		if _, err := c.MagnitudeResponse(n); !errors.Is(err, ErrInvalidFFTSize) {
			t.Fatalf("n=%d: err = %v, want ErrInvalidFFTSize", n, err)
		}
	}
}

func TestMagnitudeDB(t *testing.T) {
	c := Coefficients{Feedforward: []float64{0.5, 0.5}, Feedback: []float64{1, 0}}
	if got := c.MagnitudeDB(0, 48000); math.Abs(got) > 1e-6 {
		t.Fatalf("DC = %v dB, want 0", got)
	}
	if got := c.MagnitudeDB(24000, 48000); got > -100 {
		t.Fatalf("Nyquist = %v dB, want a deep null", got)
	}

	db, err := c.MagnitudeResponseDB(8)
	if err != nil {
		t.Fatalf("MagnitudeResponseDB: %v", err)
	}
	if math.Abs(db[0]) > 1e-6 {
		t.Fatalf("db[0] = %v, want 0", db[0])
	}
	if !math.IsInf(db[len(db)-1], -1) && db[len(db)-1] > -100 {
		t.Fatalf("db[nyquist] = %v, want a deep null", db[len(db)-1])
	}
}

func TestPhaseOfPureDelay(t *testing.T) {
	c := Coefficients{Feedforward: []float64{0, 1}, Feedback: []float64{1, 0}}
	// One sample of delay at fs/4 is -pi/2.
	if got := c.Phase(12000, 48000); math.Abs(got+math.Pi/2) > 1e-12 {
		t.Fatalf("phase = %v, want -pi/2", got)
	}
}
