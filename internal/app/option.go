package app

import (
	"io"

	"github.com/cwbudde/filter-playground/internal/config"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *config.Config
	configPath string
	watch      bool
	input      io.Reader
	output     io.Writer
	logOutput  io.Writer
	signals    bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithConfigFile records the file the configuration came from. With watch
// set the file is reloaded on change.
func WithConfigFile(path string, watch bool) Option {
	return func(a *application) {
		a.configPath = path
		a.watch = watch
	}
}

// WithInput sets the command source. Without one the application runs
// until its context is cancelled.
func WithInput(r io.Reader) Option {
	return func(a *application) {
		a.input = r
	}
}

// WithOutput sets where command replies are written.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.output = w
	}
}

// WithLogOutput sets the log destination.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithSignals enables shutdown on SIGINT and SIGTERM.
func WithSignals(enabled bool) Option {
	return func(a *application) {
		a.signals = enabled
	}
}
