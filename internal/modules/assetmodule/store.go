package assetmodule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mantonx/titleseeker/internal/types"
)

// FileStore keeps uploaded images under one directory per asset kind
type FileStore struct {
	root  string
	mutex sync.RWMutex
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Root returns the upload directory
func (fs *FileStore) Root() string {
	return fs.root
}

// Dir returns the directory of kind
func (fs *FileStore) Dir(kind types.AssetKind) string {
	return filepath.Join(fs.root, string(kind))
}

// Path returns the location of filename inside kind's directory. Path
// elements in filename are dropped.
func (fs *FileStore) Path(kind types.AssetKind, filename string) string {
	return filepath.Join(fs.Dir(kind), filepath.Base(filepath.Clean("/"+filename)))
}

// EnsureDirs creates every kind directory
func (fs *FileStore) EnsureDirs() error {
	for _, kind := range []types.AssetKind{types.AssetPosters, types.AssetActors, types.AssetDirectors} {
		if err := os.MkdirAll(fs.Dir(kind), 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", kind, err)
		}
	}
	return nil
}

// Save writes data atomically, replacing any previous file of that name
func (fs *FileStore) Save(kind types.AssetKind, filename string, data []byte) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if err := os.MkdirAll(fs.Dir(kind), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := fs.Path(kind, filename)
	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move %s into place: %w", filename, err)
	}
	return nil
}

// Exists reports whether a regular file named filename is stored for kind
func (fs *FileStore) Exists(kind types.AssetKind, filename string) bool {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	info, err := os.Stat(fs.Path(kind, filename))
	return err == nil && !info.IsDir()
}

// Remove deletes a stored file. A missing file is not an error.
func (fs *FileStore) Remove(kind types.AssetKind, filename string) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if err := os.Remove(fs.Path(kind, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", filename, err)
	}
	return nil
}

// Count returns how many stored images kind holds, thumbnails excluded
func (fs *FileStore) Count(kind types.AssetKind) (int, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	entries, err := os.ReadDir(fs.Dir(kind))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), thumbPrefix) || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		n++
	}
	return n, nil
}
