// Package quickmovies keeps the list of movies queued for full creation
// in a JSON document on disk.
package quickmovies

import (
	"errors"
	"fmt"
	"sync"

	movietypes "github.com/mantonx/titleseeker/internal/modules/moviemodule/types"
	"github.com/mantonx/titleseeker/internal/utils"
)

// ErrExists is returned when a key is already queued
var ErrExists = errors.New("movie already exists")

type document struct {
	Movies []movietypes.QuickMovie `json:"movies"`
}

// Store reads and rewrites the quick movies file
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// List returns the queued movies, newest first.
// A missing file is an empty list.
func (s *Store) List() ([]movietypes.QuickMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Get returns the queued movie with key
func (s *Store) Get(key string) (*movietypes.QuickMovie, bool, error) {
	movies, err := s.List()
	if err != nil {
		return nil, false, err
	}
	for i := range movies {
		if movies[i].Key == key {
			return &movies[i], true, nil
		}
	}
	return nil, false, nil
}

// Prepend queues movie in front of the existing entries
func (s *Store) Prepend(movie movietypes.QuickMovie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	movies, err := s.read()
	if err != nil {
		return err
	}
	for _, m := range movies {
		if m.Key == movie.Key {
			return ErrExists
		}
	}
	return s.write(append([]movietypes.QuickMovie{movie}, movies...))
}

// Remove drops key from the queue. Unknown keys are ignored.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !utils.FileExists(s.path) {
		return nil
	}
	movies, err := s.read()
	if err != nil {
		return err
	}

	kept := movies[:0]
	for _, m := range movies {
		if m.Key != key {
			kept = append(kept, m)
		}
	}
	return s.write(kept)
}

func (s *Store) read() ([]movietypes.QuickMovie, error) {
	var doc document
	if _, err := utils.ReadJSONFile(s.path, &doc); err != nil {
		return nil, err
	}
	return doc.Movies, nil
}

func (s *Store) write(movies []movietypes.QuickMovie) error {
	if movies == nil {
		movies = []movietypes.QuickMovie{}
	}
	if err := utils.WriteJSONFile(s.path, document{Movies: movies}); err != nil {
		return fmt.Errorf("failed to save quick movies: %w", err)
	}
	return nil
}
