// Package config holds the playground configuration: YAML loading with
// environment expansion, validation and hot reload.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cwbudde/filter-playground/dsp/filter/synth"
	"github.com/cwbudde/filter-playground/dsp/polezero"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Editor EditorConfig      `yaml:"editor"`
	Synth  SynthConfig       `yaml:"synth"`
	Audio  AudioConfig       `yaml:"audio"`
	Loop   LoopConfig        `yaml:"loop"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Editor.Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if err := c.Synth.Validate(); err != nil {
		return fmt.Errorf("synth: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if err := c.Loop.Validate(); err != nil {
		return fmt.Errorf("loop: %w", err)
	}
	return nil
}

// ApplicationConfig holds logging configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// EditorConfig holds canvas and interaction settings.
type EditorConfig struct {
	CanvasSize    float64 `yaml:"canvas_size"`
	PlotRange     float64 `yaml:"plot_range"`
	HitThreshold  float64 `yaml:"hit_threshold"`
	Policy        string  `yaml:"policy"`
	RejectInvalid bool    `yaml:"reject_invalid"`
	LoadDemo      bool    `yaml:"load_demo"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CanvasSize, validation.Required, validation.Min(1.0)),
		validation.Field(&c.PlotRange, validation.Required, validation.Min(0.1)),
		validation.Field(&c.HitThreshold, validation.Required, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Policy, validation.By(func(any) error {
			_, err := polezero.ParsePolicy(c.Policy)
			return err
		})),
		validation.Field(&c.RejectInvalid, validation.By(func(any) error {
			if c.RejectInvalid && c.ConjugatePolicy() == polezero.PolicyFree {
				return errors.New("requires the conjugate policy")
			}
			return nil
		})),
	)
}

// ConjugatePolicy returns the parsed policy.
func (c *EditorConfig) ConjugatePolicy() polezero.Policy {
	p, _ := polezero.ParsePolicy(c.Policy)
	return p
}

// Viewport returns the square canvas transform.
func (c *EditorConfig) Viewport() (polezero.Viewport, error) {
	return polezero.NewViewport(c.CanvasSize, c.CanvasSize, c.PlotRange)
}

// SynthConfig holds coefficient synthesis settings.
type SynthConfig struct {
	RequireStable bool    `yaml:"require_stable"`
	Tolerance     float64 `yaml:"tolerance"`
	Normalization string  `yaml:"normalization"`
	Gain          float64 `yaml:"gain"`
}

// Validate validates the synthesis configuration.
func (c *SynthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Tolerance, validation.Required, validation.Min(0.0), validation.Max(1e-3)),
		validation.Field(&c.Gain, validation.Required, validation.Min(0.0)),
		validation.Field(&c.Normalization, validation.By(func(any) error {
			_, err := synth.ParseNormalization(c.Normalization)
			return err
		})),
	)
}

// Synthesizer builds a synthesizer from the configuration.
func (c *SynthConfig) Synthesizer() *synth.Synthesizer {
	norm, _ := synth.ParseNormalization(c.Normalization)
	return synth.New(
		synth.WithStabilityRequired(c.RequireStable),
		synth.WithTolerance(c.Tolerance),
		synth.WithGain(c.Gain),
		synth.WithNormalization(norm),
	)
}

// AudioConfig holds audio engine settings.
type AudioConfig struct {
	SampleRate     float64 `yaml:"sample_rate"`
	BlockSize      int     `yaml:"block_size"`
	NoiseAmplitude float64 `yaml:"noise_amplitude"`
	Master         float64 `yaml:"master"`
	Seed           int64   `yaml:"seed"`
	FadeLength     int     `yaml:"fade_length"`
}

// Validate validates the audio configuration.
func (c *AudioConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SampleRate, validation.Required, validation.Min(1000.0), validation.Max(384000.0)),
		validation.Field(&c.BlockSize, validation.Required, validation.Min(16), validation.Max(65536)),
		validation.Field(&c.NoiseAmplitude, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Master, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.FadeLength, validation.Min(0)),
	)
}

// BlockDuration returns the playback time covered by one block.
func (c *AudioConfig) BlockDuration() time.Duration {
	return time.Duration(float64(c.BlockSize) / c.SampleRate * float64(time.Second))
}

// LoopConfig holds the editor loop timing.
type LoopConfig struct {
	FrameInterval  time.Duration `yaml:"frame_interval"`
	UpdateInterval time.Duration `yaml:"update_interval"`
}

// Validate validates the loop configuration.
func (c *LoopConfig) Validate() error {
	if c.FrameInterval < 0 || c.UpdateInterval < 0 {
		return errors.New("intervals must not be negative")
	}
	if c.FrameInterval > 0 && c.FrameInterval < time.Millisecond {
		return fmt.Errorf("frame interval %s is below 1ms", c.FrameInterval)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
		},
		Editor: EditorConfig{
			CanvasSize:   400,
			PlotRange:    polezero.DefaultPlotRange,
			HitThreshold: 0.1,
			Policy:       polezero.PolicyConjugate.String(),
		},
		Synth: SynthConfig{
			RequireStable: true,
			Tolerance:     synth.DefaultTolerance,
			Normalization: synth.NormalizeNone.String(),
			Gain:          1,
		},
		Audio: AudioConfig{
			SampleRate:     48000,
			BlockSize:      512,
			NoiseAmplitude: 0.5,
			Master:         0.75,
			Seed:           1,
			FadeLength:     480,
		},
		Loop: LoopConfig{
			FrameInterval:  16 * time.Millisecond,
			UpdateInterval: 20 * time.Millisecond,
		},
	}
}

// String summarizes the configuration for logs.
func (c *Config) String() string {
	return fmt.Sprintf("policy=%s normalization=%s stable=%t rate=%g block=%d",
		c.Editor.Policy, c.Synth.Normalization, c.Synth.RequireStable, c.Audio.SampleRate, c.Audio.BlockSize)
}
