package sentcache

import (
	"context"
	"sync"
)

// MemoryStore keeps the cache in process memory. Useful for dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	urls  []string
	saved bool
	saves int
}

// NewMemory returns an empty store. Seed, when given, acts as a previous save.
func NewMemory(seed ...string) *MemoryStore {
	s := &MemoryStore{}
	if len(seed) > 0 {
		s.urls = append([]string(nil), seed...)
		s.saved = true
	}
	return s
}

// Load returns a copy of the last saved list.
func (s *MemoryStore) Load(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return nil, ErrNotFound
	}
	return append([]string{}, s.urls...), nil
}

// Save replaces the stored list with a copy of urls.
func (s *MemoryStore) Save(_ context.Context, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append([]string{}, urls...)
	s.saved = true
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
