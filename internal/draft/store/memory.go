package store

import (
	"context"
	"sync"

	"permitdesk/internal/sentinel"
)

// InMemory stores values in memory. Used in tests and when no database path
// is configured; drafts do not survive a restart.
type InMemory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewInMemory creates an in-memory key-value store.
func NewInMemory() *InMemory {
	return &InMemory{values: make(map[string][]byte)}
}

// Get retrieves the value stored under key.
func (s *InMemory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores value under key, overwriting any prior value.
func (s *InMemory) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

// Remove deletes the value under key. Removing a missing key is not an error.
func (s *InMemory) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
