package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mantonx/titleseeker/internal/logger"
)

// settle is how long the file must stay quiet before it is reloaded
const settle = 500 * time.Millisecond

// Watch reloads the store whenever its file is written. The directory is
// watched since editors save by renaming over the file. It returns once the
// watcher runs; cancel ctx to stop it.
func (s *Store) Watch(ctx context.Context) error {
	path := s.Path()
	if path == "" {
		return errors.New("configuration was not loaded from a file")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	go s.watchLoop(ctx, w, filepath.Clean(path))
	return nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, path string) {
	defer w.Close()

	reload := time.NewTimer(settle)
	reload.Stop()
	defer reload.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == path && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				reload.Reset(settle)
			}
		case <-reload.C:
			if err := s.Load(path); err != nil {
				logger.Error("Configuration reload failed", "path", path, "error", err)
				continue
			}
			logger.Info("Configuration reloaded", "path", path)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("Configuration watcher error", "error", err)
		}
	}
}

// Watch hot-reloads the process-wide configuration
func Watch(ctx context.Context) error {
	return global.Watch(ctx)
}
