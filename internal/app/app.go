// Package app wires the editor session, the audio engine, configuration
// reload and the line command interface into one running application.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/filter-playground/internal/audio"
	"github.com/cwbudde/filter-playground/internal/config"
	"github.com/cwbudde/filter-playground/internal/editor"
)

// levelReportInterval is how often audio levels are logged at debug level.
const levelReportInterval = 2 * time.Second

// Run starts the application with the given options and blocks until the
// context is cancelled, the input ends or a quit command arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		output:    io.Discard,
		logOutput: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return errors.New("config is required")
	}
	cfg := app.config

	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)
	logger := newLogger(app.logOutput, cfg.App.LogFormat, level)

	logger.Info("Configuration loaded",
		slog.String("config", cfg.String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	engine, err := audio.NewEngine(cfg.Audio.SampleRate,
		audio.WithNoiseAmplitude(cfg.Audio.NoiseAmplitude),
		audio.WithSeed(cfg.Audio.Seed),
		audio.WithMaster(cfg.Audio.Master),
		audio.WithFadeLength(cfg.Audio.FadeLength),
	)
	if err != nil {
		return fmt.Errorf("init audio: %w", err)
	}

	session, err := newSession(cfg, engine, logger)
	if err != nil {
		return err
	}

	loop := editor.NewLoop(session,
		editor.WithFrameInterval(cfg.Loop.FrameInterval),
		editor.WithUpdateInterval(cfg.Loop.UpdateInterval),
		editor.WithLoopLogger(logger),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Run(gCtx)
	})

	g.Go(func() error {
		return pumpAudio(gCtx, engine, cfg.Audio.BlockSize, cfg.Audio.BlockDuration(), logger)
	})

	if app.input != nil {
		commander := NewCommander(loop, engine, app.output)
		g.Go(func() error {
			defer cancel()
			return serveCommands(gCtx, app.input, commander, app.output, logger)
		})
	}

	if app.watch && app.configPath != "" {
		g.Go(func() error {
			return config.Watch(gCtx, app.configPath, logger, func(next *config.Config) {
				applyReload(gCtx, cfg, next, level, loop, logger)
			})
		})
	}

	if app.signals {
		g.Go(func() error {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case sig := <-quit:
				logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
				cancel()
			case <-gCtx.Done():
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Application stopped", slog.Uint64("audio_resets", engine.Resets()))
	return nil
}

func newLogger(w io.Writer, format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func newSession(cfg *config.Config, sink editor.CoefficientSink, logger *slog.Logger) (*editor.Session, error) {
	vp, err := cfg.Editor.Viewport()
	if err != nil {
		return nil, fmt.Errorf("init editor: %w", err)
	}
	session := editor.NewSession(vp,
		editor.WithPolicy(cfg.Editor.ConjugatePolicy()),
		editor.WithHitThreshold(cfg.Editor.HitThreshold),
		editor.WithSynthesizer(cfg.Synth.Synthesizer()),
		editor.WithRejectInvalid(cfg.Editor.RejectInvalid),
		editor.WithSink(sink),
		editor.WithLogger(logger),
	)
	if cfg.Editor.LoadDemo {
		if err := session.LoadDemo(); err != nil {
			return nil, fmt.Errorf("load demo filter: %w", err)
		}
	}
	return session, nil
}

// applyReload pushes the live-reloadable parts of next into the running
// application. Audio and canvas settings only apply after a restart.
func applyReload(ctx context.Context, current, next *config.Config, level *slog.LevelVar, loop *editor.Loop, logger *slog.Logger) {
	level.Set(next.App.LogLevel)

	settings := editor.Settings{
		HitThreshold:  next.Editor.HitThreshold,
		Synthesizer:   next.Synth.Synthesizer(),
		RejectInvalid: next.Editor.RejectInvalid,
	}
	err := loop.Do(ctx, func(s *editor.Session) error {
		s.Reconfigure(settings)
		return nil
	})
	if err != nil {
		logger.Warn("config reload not applied", slog.String("error", err.Error()))
		return
	}

	if next.Audio != current.Audio || next.Editor.CanvasSize != current.Editor.CanvasSize ||
		next.Editor.PlotRange != current.Editor.PlotRange || next.Editor.Policy != current.Editor.Policy {
		logger.Warn("audio, canvas and policy changes take effect after restart")
	}
}

func pumpAudio(ctx context.Context, engine *audio.Engine, blockSize int, every time.Duration, logger *slog.Logger) error {
	t := time.NewTicker(every)
	defer t.Stop()

	report := time.NewTicker(levelReportInterval)
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("audio pump stopped")
			return nil
		case <-t.C:
			engine.RenderBlock(blockSize)
		case <-report.C:
			lv := engine.Levels()
			logger.Debug("audio levels",
				slog.Float64("left_rms", lv.Left),
				slog.Float64("right_rms", lv.Right))
		}
	}
}

// serveCommands reads one command per line. Reading happens on its own
// goroutine so that cancellation does not wait for the next line.
func serveCommands(ctx context.Context, r io.Reader, c *Commander, out io.Writer, logger *slog.Logger) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read commands: %w", err)
					}
				default:
				}
				logger.Info("command input closed")
				return nil
			}
			err := c.Execute(ctx, line)
			switch {
			case errors.Is(err, ErrQuit):
				logger.Info("quit requested")
				return nil
			case err != nil:
				fmt.Fprintf(out, "error: %v\n", err)
				logger.Debug("command failed", slog.String("line", line), slog.String("error", err.Error()))
			}
		}
	}
}
