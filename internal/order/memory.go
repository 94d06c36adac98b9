package order

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store. It does not survive restarts.
type MemoryStore struct {
	mu  sync.Mutex
	ids []string

	// LoadErr and SaveErr, when set, are returned by the next calls.
	LoadErr error
	SaveErr error
}

// NewMemoryStore returns a MemoryStore seeded with ids.
func NewMemoryStore(ids ...string) *MemoryStore {
	return &MemoryStore{ids: slices.Clone(ids)}
}

// Load implements Store.
func (s *MemoryStore) Load(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	out := slices.Clone(s.ids)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.ids = slices.Clone(ids)
	return nil
}
