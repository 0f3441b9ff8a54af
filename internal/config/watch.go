package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/vcell/internal/errors"
	"github.com/vango-dev/vcell/pkg/signal"
)

// Dispatcher runs fn on the goroutine that owns the cell. app.Loop's
// Dispatch method satisfies it.
type Dispatcher func(fn func()) bool

// Watch reloads path whenever it changes and sets each valid revision on
// cell through dispatch. Revisions that fail to load are logged and
// skipped; the cell keeps the last good value. Identical revisions are not
// set again.
//
// Watch blocks until ctx is done. It returns an error only if the watcher
// cannot be started.
func Watch(ctx context.Context, path string, dispatch Dispatcher, cell signal.Mutable[*Config], logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New(errors.CodeConfigWatch).Wrap(err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.New(errors.CodeConfigWatch).
			WithDetail("Cannot watch " + filepath.Dir(target)).
			Wrap(err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			reload(path, dispatch, cell, logger)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watch error", "code", errors.CodeConfigWatch, "error", werr)
		}
	}
}

func reload(path string, dispatch Dispatcher, cell signal.Mutable[*Config], logger *slog.Logger) {
	cfg, err := Load(path)
	if err != nil {
		logger.Warn("config reload rejected", "path", path, "error", err)
		return
	}

	ok := dispatch(func() {
		if cur, err := cell.TryGet(); err == nil && Equal(cur, cfg) {
			return
		}
		if err := cell.TrySet(cfg); err != nil {
			logger.Warn("config reload not applied", "path", path, "error", err)
			return
		}
		logger.Info("config reloaded", "path", path)
	})
	if !ok {
		logger.Warn("config reload dropped", "path", path)
	}
}
