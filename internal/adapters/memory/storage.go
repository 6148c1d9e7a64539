// Package memory provides in-process adapters.
package memory

import "sync"

// Storage implements ports.Storage in memory. It backs session storage and
// durable storage when identity caching is not wanted on disk.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStorage creates an empty store.
func NewStorage() *Storage {
	return &Storage{values: map[string]string{}}
}

func (s *Storage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Storage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Storage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Clear drops every key, like a browser ending its session.
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
}
