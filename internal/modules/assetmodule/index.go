package assetmodule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/types"
)

// DirIndex mirrors the file names of every upload directory in memory.
// fsnotify keeps it current when files are added or removed outside the
// service, e.g. when posters are copied in by hand.
type DirIndex struct {
	store *FileStore

	mu    sync.RWMutex
	files map[types.AssetKind]map[string]struct{}
	dirs  map[string]types.AssetKind
	ready bool
}

// NewDirIndex creates an index over the directories of store
func NewDirIndex(store *FileStore) *DirIndex {
	return &DirIndex{
		store: store,
		files: make(map[types.AssetKind]map[string]struct{}),
		dirs:  make(map[string]types.AssetKind),
	}
}

// Start scans the directories and watches them until ctx is done
func (idx *DirIndex) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create upload watcher: %w", err)
	}

	for _, kind := range []types.AssetKind{types.AssetPosters, types.AssetActors, types.AssetDirectors} {
		dir := filepath.Clean(idx.store.Dir(kind))
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		if err := idx.scan(kind, dir); err != nil {
			watcher.Close()
			return err
		}
	}

	idx.mu.Lock()
	idx.ready = true
	idx.mu.Unlock()

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				idx.mu.Lock()
				idx.ready = false
				idx.mu.Unlock()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				idx.apply(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Upload watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (idx *DirIndex) scan(kind types.AssetKind, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if !e.IsDir() && !strings.HasSuffix(e.Name(), ".tmp") {
			names[e.Name()] = struct{}{}
		}
	}

	idx.mu.Lock()
	idx.files[kind] = names
	idx.dirs[dir] = kind
	idx.mu.Unlock()
	return nil
}

func (idx *DirIndex) apply(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasSuffix(name, ".tmp") {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	kind, ok := idx.dirs[filepath.Dir(filepath.Clean(event.Name))]
	if !ok {
		return
	}
	switch {
	case event.Has(fsnotify.Create):
		idx.files[kind][name] = struct{}{}
		logger.Debug("Upload added", "kind", kind, "file", name)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(idx.files[kind], name)
		logger.Debug("Upload removed", "kind", kind, "file", name)
	}
}

// Has reports whether filename is stored for kind. known is false while
// the index is not running.
func (idx *DirIndex) Has(kind types.AssetKind, filename string) (has, known bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.ready {
		return false, false
	}
	_, has = idx.files[kind][filepath.Base(filename)]
	return has, true
}

// Add records a file written by the service itself, ahead of its event
func (idx *DirIndex) Add(kind types.AssetKind, filename string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if names, ok := idx.files[kind]; ok {
		names[filepath.Base(filename)] = struct{}{}
	}
}

// Drop forgets a file removed by the service itself
func (idx *DirIndex) Drop(kind types.AssetKind, filename string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.files[kind], filepath.Base(filename))
}

// Len returns the number of indexed files of kind
func (idx *DirIndex) Len(kind types.AssetKind) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.files[kind])
}
