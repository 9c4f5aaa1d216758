// Package prefs persists small user preferences in a dotenv file next to
// the database.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
)

type Store struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// Open reads the preferences file. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string)}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences %s: %w", path, err)
	}
	s.values = values
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and writes the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.values[key]; ok && old == value {
		return nil
	}
	s.values[key] = value
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := godotenv.Write(s.values, s.path); err != nil {
		logger.Error("Failed to write preferences", "path", s.path, "error", err)
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// FilterMode returns the selected filter mode, or the default when none is
// stored or the stored value is not recognised.
func (s *Store) FilterMode() models.FilterMode {
	v, ok := s.Get(constants.PrefSelectedFilter)
	if !ok {
		return models.DefaultFilterMode
	}
	mode, err := models.ParseFilterMode(v)
	if err != nil {
		logger.Warn("Ignoring unknown filter preference", "value", v)
		return models.DefaultFilterMode
	}
	return mode
}

func (s *Store) SetFilterMode(mode models.FilterMode) error {
	return s.Set(constants.PrefSelectedFilter, string(mode))
}
