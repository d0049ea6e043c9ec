package synth

import (
	"fmt"
	"math"
	"strings"
)

// DefaultTolerance bounds the imaginary residue accepted on a synthesized
// coefficient, relative to max(1, |real part|).
const DefaultTolerance = 1e-9

// Normalization selects how the feed-forward vector is scaled.
type Normalization int

const (
	// NormalizeNone multiplies the feed-forward taps by the gain.
	NormalizeNone Normalization = iota
	// NormalizeDC scales so that |H(z=1)| equals the gain.
	NormalizeDC
	// NormalizePeak scales so that the maximum magnitude response equals
	// the gain.
	NormalizePeak
)

func (n Normalization) String() string {
	switch n {
	case NormalizeNone:
		return "none"
	case NormalizeDC:
		return "dc"
	case NormalizePeak:
		return "peak"
	default:
		return fmt.Sprintf("Normalization(%d)", int(n))
	}
}

// ParseNormalization accepts "none", "dc" and "peak".
func ParseNormalization(s string) (Normalization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return NormalizeNone, nil
	case "dc":
		return NormalizeDC, nil
	case "peak":
		return NormalizePeak, nil
	default:
		return 0, fmt.Errorf("unknown normalization %q", s)
	}
}

// Config holds synthesizer settings.
type Config struct {
	RequireStable bool
	Tolerance     float64
	Gain          float64
	Normalization Normalization
}

// DefaultConfig requires stability, uses DefaultTolerance and unity gain
// without normalization.
func DefaultConfig() Config {
	return Config{
		RequireStable: true,
		Tolerance:     DefaultTolerance,
		Gain:          1,
		Normalization: NormalizeNone,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithStabilityRequired enables or disables the unit-circle check on poles.
func WithStabilityRequired(required bool) Option {
	return func(cfg *Config) {
		cfg.RequireStable = required
	}
}

// WithTolerance sets the imaginary residue tolerance.
func WithTolerance(tol float64) Option {
	return func(cfg *Config) {
		if tol > 0 && !math.IsInf(tol, 0) {
			cfg.Tolerance = tol
		}
	}
}

// WithGain sets the target gain.
func WithGain(gain float64) Option {
	return func(cfg *Config) {
		if gain > 0 && !math.IsInf(gain, 0) {
			cfg.Gain = gain
		}
	}
}

// WithNormalization selects the gain normalization mode.
func WithNormalization(n Normalization) Option {
	return func(cfg *Config) {
		cfg.Normalization = n
	}
}

// ApplyOptions applies opts to DefaultConfig.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
