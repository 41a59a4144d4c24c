package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/newsledger/internal/dataset"
)

// DefaultDebounce is used when Watch is given a non-positive debounce.
const DefaultDebounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the data directory and reloads a
// dataset once its file has been quiet for debounce. It runs until ctx is
// cancelled. A burst of events for one file collapses into a single reload.
func Watch(ctx context.Context, c *Catalog, debounce time.Duration, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the files: datasets may be replaced by rename.
	if err := w.Add(c.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", c.Root()))

	pending := make(map[dataset.ID]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			for id := range pending {
				changed, err := c.Reload(id)
				if err != nil {
					logger.Warn("watcher: reload failed", slog.String("dataset", id.String()), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: reloaded", slog.String("dataset", id.String()), slog.Bool("changed", changed))
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			id, ok := c.IDForFile(filepath.Base(ev.Name))
			if !ok {
				continue
			}
			logger.Debug("watcher: change", slog.String("dataset", id.String()), slog.String("op", ev.Op.String()))
			pending[id] = struct{}{}
			timer.Reset(debounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
