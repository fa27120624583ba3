// Package memory provides in-memory implementations of the persistence
// interfaces, used in development mode and in tests.
package memory

import (
	"context"
	"strings"
	"sync"
)

// KVStore is a thread-safe in-memory key-value side-channel.
type KVStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string // userID -> key -> value
}

// NewKVStore creates an empty in-memory store.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]map[string]string)}
}

// Get returns the value for a key, reporting presence explicitly.
func (s *KVStore) Get(_ context.Context, userID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[userID][key]
	return v, ok, nil
}

// Set writes a value, overwriting any previous one.
func (s *KVStore) Set(_ context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[userID] == nil {
		s.data[userID] = make(map[string]string)
	}
	s.data[userID][key] = value
	return nil
}

// List returns all of a user's entries with the given key prefix.
func (s *KVStore) List(_ context.Context, userID, prefix string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string)
	for k, v := range s.data[userID] {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}
