package memory

import (
	"PayoutDesk/internal/core/ports"
	"context"
	"sync"
)

// tokenStore keeps tokens in process memory. Everything is lost on restart.
type tokenStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ ports.TokenStore = (*tokenStore)(nil)

// NewTokenStore creates an empty in-memory token store.
func NewTokenStore() ports.TokenStore {
	return &tokenStore{values: make(map[string]string)}
}

func (s *tokenStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *tokenStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *tokenStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
