package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 200 * time.Millisecond

// Watch reloads filename whenever it changes and calls onChange with the
// new configuration until ctx is cancelled. Invalid files are logged and
// skipped; the previous configuration stays in effect.
//
// The parent directory is watched so that editors replacing the file via
// rename are picked up.
func Watch(ctx context.Context, filename string, logger *slog.Logger, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(filename)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}

	logger.Info("config watcher: started", slog.String("file", target))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(reloadDelay)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(reloadDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-reloadCh:
			cfg := NewDefaultConfig()
			if err := Load(target, cfg); err != nil {
				stage := "unknown"
				var le *LoadError
				if errors.As(err, &le) {
					stage = le.Stage
				}
				logger.Warn("config watcher: reload failed",
					slog.String("stage", stage), slog.String("error", err.Error()))
				continue
			}
			logger.Info("config watcher: reloaded", slog.String("config", cfg.String()))
			onChange(cfg)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				logger.Debug("config watcher: change", slog.String("op", ev.Op.String()))
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
