// Package memory provides an in-memory ContentItemStore, used in tests and
// examples to observe content deletion during type removal.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store implements contentdef.ContentItemStore using in-memory storage.
type Store struct {
	mu    sync.RWMutex
	items map[string][]uuid.UUID // type name -> item ids
}

// New creates a new in-memory content item store
func New() *Store {
	return &Store{
		items: make(map[string][]uuid.UUID),
	}
}

// CreateItem records a new content item of the given type and returns its id.
func (s *Store) CreateItem(typeName string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.items[typeName] = append(s.items[typeName], id)
	return id
}

// CountItems reports the number of items of the given type.
func (s *Store) CountItems(ctx context.Context, typeName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items[typeName]), nil
}

// ListItemIDs returns the ids of all items of the given type.
func (s *Store) ListItemIDs(ctx context.Context, typeName string) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.items[typeName]
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out, nil
}

// DeleteItems removes every item of the given type.
func (s *Store) DeleteItems(ctx context.Context, typeName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, typeName)
	return nil
}
