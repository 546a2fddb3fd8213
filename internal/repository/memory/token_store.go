package memory

import (
	"context"
	"sync"
)

// TokenStore is a process-local key-value store for credentials.
type TokenStore struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		values: make(map[string]string),
	}
}

// Get retrieves the value stored under key.
func (s *TokenStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set stores value under key.
func (s *TokenStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes the given keys. Missing keys are ignored.
func (s *TokenStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}
