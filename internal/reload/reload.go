// Package reload watches the configuration file and re-applies settings
// that are safe to change at runtime.
package reload

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Callback is invoked with the config file path after a change settled.
type Callback func(path string)

// debounce holds off the callback until editor write bursts settle.
// Editors commonly save via write-then-rename, producing several events
// per save.
const debounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the config file and calls cb after
// each settled change, until ctx is cancelled. The parent directory is
// watched rather than the file itself so rename-style saves keep working.
func Watch(ctx context.Context, path string, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("reload: watching config", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("reload: stopped")
			return nil

		case <-timerCh:
			logger.Debug("reload: config changed", slog.String("path", abs))
			cb(abs)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("reload: watcher error", slog.String("error", err.Error()))
		}
	}
}
