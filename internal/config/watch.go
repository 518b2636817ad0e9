package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 100 * time.Millisecond

// Watcher signals when the config file changes on disk. Editors replace files
// instead of writing them, so the parent directory is watched.
type Watcher struct {
	filePath string
	debounce time.Duration
	changedC chan struct{}
}

func NewWatcher(filePath string, debounce time.Duration) Watcher {
	return Watcher{
		filePath: filepath.Clean(filePath),
		debounce: debounce,
		changedC: make(chan struct{}, 1),
	}
}

func (Watcher) String() string {
	return "config.Watcher"
}

// Changed receives after a burst of writes to the config file has settled.
func (w Watcher) Changed() <-chan struct{} {
	return w.changedC
}

func (w Watcher) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.filePath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.filePath, err)
	}

	log := slog.With("func", "config.Watcher.Serve", "path", w.filePath)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.filePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			log.Debug("Config file changed", "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Failed to watch config", "error", err)
		case <-timer.C:
			core.FlagChannel(w.changedC)
		}
	}
}
