package ratelimit

import (
	"sync"
	"time"
)

// Store holds the per-caller request timestamps. It is injected into the
// Limiter so tests can substitute isolated storage and so a shared backend
// could replace it without touching admission logic.
type Store interface {
	Get(key string) ([]time.Time, bool)
	Set(key string, stamps []time.Time)
	Delete(key string)
	Keys() []string
}

// memoryStore is the default single-process Store.
type memoryStore struct {
	mu sync.RWMutex
	m  map[string][]time.Time
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{m: make(map[string][]time.Time)}
}

func (s *memoryStore) Get(key string) ([]time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stamps, ok := s.m[key]
	return stamps, ok
}

func (s *memoryStore) Set(key string, stamps []time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = stamps
}

func (s *memoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (s *memoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	return keys
}
