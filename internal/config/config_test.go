package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/filter-playground/dsp/filter/synth"
	"github.com/cwbudde/filter-playground/dsp/polezero"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Editor.ConjugatePolicy() != polezero.PolicyConjugate {
		t.Errorf("policy = %v, want conjugate", cfg.Editor.ConjugatePolicy())
	}
	vp, err := cfg.Editor.Viewport()
	if err != nil {
		t.Fatalf("Viewport: %v", err)
	}
	if vp.Scale() != 100 {
		t.Errorf("scale = %v, want 100", vp.Scale())
	}
	if got := cfg.Audio.BlockDuration(); got != 512*time.Second/48000 {
		t.Errorf("block duration = %v", got)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"policy", func(c *Config) { c.Editor.Policy = "mirror" }, "editor"},
		{"reject free", func(c *Config) { c.Editor.Policy = "free"; c.Editor.RejectInvalid = true }, "editor"},
		{"normalization", func(c *Config) { c.Synth.Normalization = "loud" }, "synth"},
		{"log format", func(c *Config) { c.App.LogFormat = "xml" }, "app"},
		{"canvas", func(c *Config) { c.Editor.CanvasSize = 0 }, "editor"},
		{"threshold", func(c *Config) { c.Editor.HitThreshold = 2 }, "editor"},
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 10 }, "audio"},
		{"block size", func(c *Config) { c.Audio.BlockSize = 0 }, "audio"},
		{"master", func(c *Config) { c.Audio.Master = 1.5 }, "audio"},
		{"frame interval", func(c *Config) { c.Loop.FrameInterval = time.Microsecond }, "loop"},
		{"negative update", func(c *Config) { c.Loop.UpdateInterval = -time.Second }, "loop"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.HasPrefix(err.Error(), tc.want+":") {
				t.Errorf("error %q does not name section %q", err, tc.want)
			}
		})
	}
}

func TestEmptyLogFormatDefaultsToJSON(t *testing.T) {
	cfg := ApplicationConfig{LogLevel: slog.LevelDebug}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Errorf("format = %q, want %q", cfg.LogFormat, LogFormatJSON)
	}
}

func TestSynthesizerFromConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Synth.RequireStable = false
	cfg.Synth.Normalization = "dc"
	cfg.Synth.Gain = 0.5

	got := cfg.Synth.Synthesizer().Config()
	if got.RequireStable || got.Normalization != synth.NormalizeDC || got.Gain != 0.5 {
		t.Fatalf("synth config = %+v", got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("PZ_POLICY", "free")
	path := writeConfig(t, t.TempDir(), `
app:
  log_level: debug
  log_format: text
editor:
  policy: ${PZ_POLICY}
  reject_invalid: true
synth:
  normalization: peak
loop:
  update_interval: 50ms
`)

	cfg := NewDefaultConfig()
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.LogFormat != LogFormatText {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Editor.ConjugatePolicy() != polezero.PolicyFree || !cfg.Editor.RejectInvalid {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Synth.Normalization != "peak" || !cfg.Synth.RequireStable {
		t.Errorf("synth = %+v", cfg.Synth)
	}
	if cfg.Loop.UpdateInterval != 50*time.Millisecond || cfg.Loop.FrameInterval != 16*time.Millisecond {
		t.Errorf("loop = %+v", cfg.Loop)
	}
	if cfg.Editor.CanvasSize != 400 {
		t.Errorf("canvas size = %v, want default 400", cfg.Editor.CanvasSize)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		path  string
		stage string
	}{
		{"missing", filepath.Join(dir, "missing.yaml"), StageRead},
		{"syntax", writeConfig(t, t.TempDir(), "editor: ["), StageParse},
		{"invalid", writeConfig(t, t.TempDir(), "audio:\n  block_size: 3\n"), StageValidate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Load(tc.path, NewDefaultConfig())
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("err = %v, want *LoadError", err)
			}
			if le.Stage != tc.stage || le.File != tc.path {
				t.Fatalf("LoadError = %+v, want stage %s for %s", le, tc.stage, tc.path)
			}
		})
	}

	err := Load(filepath.Join(dir, "missing.yaml"), NewDefaultConfig())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist in chain", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("sample rate = %v, want default", cfg.Audio.SampleRate)
	}
	if cfg, err = LoadOrDefault(""); err != nil || cfg == nil {
		t.Fatalf("LoadOrDefault(\"\") = %v, %v", cfg, err)
	}
}
