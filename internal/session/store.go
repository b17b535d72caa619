// Package session keeps small per-terminal-session state under the state
// directory: currently whether the sample document was already shown.
//
// A session is identified by SHEETVIEW_SESSION when set, else by the parent
// process id, so every shell that launches sheetview gets its own marker
// and relaunching from the same shell does not show the sample again.
package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/fileio"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("not found")

// Store maps "/"-separated keys to files under a base directory.
type Store struct {
	fs      afero.Fs
	baseDir string
	mu      sync.RWMutex
}

// NewStore returns a Store rooted at baseDir. The directory is created
// lazily on the first Save.
func NewStore(fs afero.Fs, baseDir string) *Store {
	return &Store{fs: fs, baseDir: baseDir}
}

// BaseDir returns the root directory of the store.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Save writes data under key atomically.
func (s *Store) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fileio.WriteAtomic(s.fs, s.keyToPath(key), data, 0o644)
}

// Load returns the data stored under key.
func (s *Store) Load(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := afero.ReadFile(s.fs, s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to read file")
	}
	return data, nil
}

// Exists reports whether key is present.
func (s *Store) Exists(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return afero.Exists(s.fs, s.keyToPath(key))
}

// Delete removes key.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.keyToPath(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return errors.Wrap(err, "failed to delete file")
	}
	return nil
}

// List returns the keys under prefix.
func (s *Store) List(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := s.baseDir
	if prefix != "" {
		root = s.keyToPath(prefix)
	}

	var keys []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		if key := filepath.ToSlash(rel); !strings.HasPrefix(filepath.Base(key), ".tmp-") {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list keys")
	}
	return keys, nil
}

func (s *Store) keyToPath(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}
