package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load stages, reported by LoadError.
const (
	StageRead     = "read"
	StageParse    = "parse"
	StageValidate = "validate"
)

// Validator is implemented by configuration types that check themselves.
type Validator interface {
	Validate() error
}

// LoadError reports which stage of loading a config file failed. The hot
// reload path logs it and keeps the running configuration.
type LoadError struct {
	File  string
	Stage string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %s: %s: %v", e.File, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a YAML file into target after expanding environment variables.
// Fields absent from the file keep the values target already holds. A
// ${VAR} without a value in the environment expands to the empty string.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return &LoadError{File: filename, Stage: StageRead, Err: err}
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), target); err != nil {
		return &LoadError{File: filename, Stage: StageParse, Err: err}
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return &LoadError{File: filename, Stage: StageValidate, Err: err}
		}
	}
	return nil
}

// LoadOrDefault loads filename over the defaults. A missing file is not an
// error; the defaults are returned as they are.
func LoadOrDefault(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err := Load(filename, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
