package memory

import (
	"context"
	"sync"

	"github.com/contentforge/contentdef/pkg/contentdef"
)

// Store implements contentdef.DefinitionStore using in-memory storage.
// Individual operations are serialized under one lock, so each alter is an
// atomic read-modify-write; nothing spans multiple operations.
type Store struct {
	mu    sync.RWMutex
	types map[string]*contentdef.ContentTypeDefinition
	parts map[string]*contentdef.ContentPartDefinition
}

// New creates a new in-memory definition store
func New() *Store {
	return &Store{
		types: make(map[string]*contentdef.ContentTypeDefinition),
		parts: make(map[string]*contentdef.ContentPartDefinition),
	}
}

// Type definition operations

func (s *Store) GetTypeDefinition(ctx context.Context, name string) (*contentdef.ContentTypeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, exists := s.types[name]
	if !exists {
		return nil, nil
	}
	// Return a copy to prevent external modifications
	return def.Clone(), nil
}

func (s *Store) ListTypeDefinitions(ctx context.Context) ([]*contentdef.ContentTypeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*contentdef.ContentTypeDefinition, 0, len(s.types))
	for _, def := range s.types {
		result = append(result, def.Clone())
	}
	return result, nil
}

func (s *Store) StoreTypeDefinition(ctx context.Context, def *contentdef.ContentTypeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.types[def.Name] = def.Clone()
	return nil
}

func (s *Store) DeleteTypeDefinition(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.types[name]; !exists {
		return contentdef.ErrTypeNotFound
	}
	delete(s.types, name)
	return nil
}

func (s *Store) AlterTypeDefinition(ctx context.Context, name string, mutate func(*contentdef.ContentTypeDefinition)) (*contentdef.ContentTypeDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, exists := s.types[name]
	if exists {
		def = def.Clone()
	} else {
		def = &contentdef.ContentTypeDefinition{Name: name}
	}

	mutate(def)
	def.Name = name // identity is immutable

	s.types[name] = def
	return def.Clone(), nil
}

// Part definition operations

func (s *Store) GetPartDefinition(ctx context.Context, name string) (*contentdef.ContentPartDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, exists := s.parts[name]
	if !exists {
		return nil, nil
	}
	return def.Clone(), nil
}

func (s *Store) ListPartDefinitions(ctx context.Context) ([]*contentdef.ContentPartDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*contentdef.ContentPartDefinition, 0, len(s.parts))
	for _, def := range s.parts {
		result = append(result, def.Clone())
	}
	return result, nil
}

func (s *Store) StorePartDefinition(ctx context.Context, def *contentdef.ContentPartDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.parts[def.Name] = def.Clone()
	return nil
}

func (s *Store) DeletePartDefinition(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.parts[name]; !exists {
		return contentdef.ErrPartNotFound
	}
	delete(s.parts, name)
	return nil
}

func (s *Store) AlterPartDefinition(ctx context.Context, name string, mutate func(*contentdef.ContentPartDefinition)) (*contentdef.ContentPartDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, exists := s.parts[name]
	if exists {
		def = def.Clone()
	} else {
		def = &contentdef.ContentPartDefinition{Name: name}
	}

	mutate(def)
	def.Name = name

	s.parts[name] = def
	return def.Clone(), nil
}
