package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bft-labs/walletscope/internal/jsoncodec"
)

const storageFileName = "storage.json"

// FileStorage implements ports.Storage as a JSON object on disk.
// It is the durable store: values survive process restarts.
type FileStorage struct {
	dir string

	mu     sync.Mutex
	values map[string]string
}

// NewFileStorage loads the storage file in dir. A missing file yields an
// empty store.
func NewFileStorage(dir string) (*FileStorage, error) {
	s := &FileStorage{dir: dir}
	values, err := s.load()
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

// Get returns the value stored under key.
func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and persists the store.
func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Remove deletes key and persists the store.
func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.save(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// Path returns the full path to the storage file.
func (s *FileStorage) Path() string {
	return filepath.Join(s.dir, storageFileName)
}

func (s *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read storage: %w", err)
	}

	values := map[string]string{}
	if err := jsoncodec.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode storage %s: %w", s.Path(), err)
	}
	return values, nil
}

// save writes the store atomically (temp file, then rename).
func (s *FileStorage) save() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	path := s.Path()
	tmp := path + ".tmp"

	data, err := jsoncodec.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}

	return os.Rename(tmp, path)
}
