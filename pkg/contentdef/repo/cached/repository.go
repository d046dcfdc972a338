// Package cached provides a read-through caching decorator for any
// contentdef.DefinitionStore. Definition reads dominate this workload; every
// content request resolves type and part shapes while mutations are rare
// operator actions, so a short TTL pays for itself quickly.
package cached

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/contentforge/contentdef/pkg/contentdef"
)

const DefaultExpiration = 5 * time.Minute
const DefaultCleanupInterval = 10 * time.Minute

const (
	typeListKey = "types"
	partListKey = "parts"
)

// Store decorates a DefinitionStore with a TTL cache. Gets and Lists are
// read-through; every write path invalidates the affected entry and the
// matching list snapshot. Alter results re-prime the entry, since the store
// just returned the authoritative value.
type Store struct {
	next  contentdef.DefinitionStore
	cache *gocache.Cache
}

// New wraps the given store with a cache using default expirations.
func New(next contentdef.DefinitionStore) *Store {
	return NewWithTTL(next, DefaultExpiration, DefaultCleanupInterval)
}

// NewWithTTL wraps the given store with explicit expiration and cleanup
// intervals.
func NewWithTTL(next contentdef.DefinitionStore, expiration, cleanupInterval time.Duration) *Store {
	return &Store{
		next:  next,
		cache: gocache.New(expiration, cleanupInterval),
	}
}

func typeKey(name string) string { return "type:" + name }
func partKey(name string) string { return "part:" + name }

// Type definition operations

func (s *Store) GetTypeDefinition(ctx context.Context, name string) (*contentdef.ContentTypeDefinition, error) {
	if v, found := s.cache.Get(typeKey(name)); found {
		if def, ok := v.(*contentdef.ContentTypeDefinition); ok {
			return def.Clone(), nil
		}
	}

	def, err := s.next.GetTypeDefinition(ctx, name)
	if err != nil {
		return nil, err
	}
	if def != nil {
		s.cache.SetDefault(typeKey(name), def.Clone())
	}
	return def, nil
}

func (s *Store) ListTypeDefinitions(ctx context.Context) ([]*contentdef.ContentTypeDefinition, error) {
	if v, found := s.cache.Get(typeListKey); found {
		if defs, ok := v.([]*contentdef.ContentTypeDefinition); ok {
			out := make([]*contentdef.ContentTypeDefinition, len(defs))
			for i, d := range defs {
				out[i] = d.Clone()
			}
			return out, nil
		}
	}

	defs, err := s.next.ListTypeDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make([]*contentdef.ContentTypeDefinition, len(defs))
	for i, d := range defs {
		snapshot[i] = d.Clone()
	}
	s.cache.SetDefault(typeListKey, snapshot)
	return defs, nil
}

func (s *Store) StoreTypeDefinition(ctx context.Context, def *contentdef.ContentTypeDefinition) error {
	if err := s.next.StoreTypeDefinition(ctx, def); err != nil {
		return err
	}
	s.cache.SetDefault(typeKey(def.Name), def.Clone())
	s.cache.Delete(typeListKey)
	return nil
}

func (s *Store) DeleteTypeDefinition(ctx context.Context, name string) error {
	if err := s.next.DeleteTypeDefinition(ctx, name); err != nil {
		return err
	}
	s.cache.Delete(typeKey(name))
	s.cache.Delete(typeListKey)
	return nil
}

func (s *Store) AlterTypeDefinition(ctx context.Context, name string, mutate func(*contentdef.ContentTypeDefinition)) (*contentdef.ContentTypeDefinition, error) {
	def, err := s.next.AlterTypeDefinition(ctx, name, mutate)
	if err != nil {
		s.cache.Delete(typeKey(name))
		s.cache.Delete(typeListKey)
		return nil, err
	}
	s.cache.SetDefault(typeKey(name), def.Clone())
	s.cache.Delete(typeListKey)
	return def, nil
}

// Part definition operations

func (s *Store) GetPartDefinition(ctx context.Context, name string) (*contentdef.ContentPartDefinition, error) {
	if v, found := s.cache.Get(partKey(name)); found {
		if def, ok := v.(*contentdef.ContentPartDefinition); ok {
			return def.Clone(), nil
		}
	}

	def, err := s.next.GetPartDefinition(ctx, name)
	if err != nil {
		return nil, err
	}
	if def != nil {
		s.cache.SetDefault(partKey(name), def.Clone())
	}
	return def, nil
}

func (s *Store) ListPartDefinitions(ctx context.Context) ([]*contentdef.ContentPartDefinition, error) {
	if v, found := s.cache.Get(partListKey); found {
		if defs, ok := v.([]*contentdef.ContentPartDefinition); ok {
			out := make([]*contentdef.ContentPartDefinition, len(defs))
			for i, d := range defs {
				out[i] = d.Clone()
			}
			return out, nil
		}
	}

	defs, err := s.next.ListPartDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make([]*contentdef.ContentPartDefinition, len(defs))
	for i, d := range defs {
		snapshot[i] = d.Clone()
	}
	s.cache.SetDefault(partListKey, snapshot)
	return defs, nil
}

func (s *Store) StorePartDefinition(ctx context.Context, def *contentdef.ContentPartDefinition) error {
	if err := s.next.StorePartDefinition(ctx, def); err != nil {
		return err
	}
	s.cache.SetDefault(partKey(def.Name), def.Clone())
	s.cache.Delete(partListKey)
	return nil
}

func (s *Store) DeletePartDefinition(ctx context.Context, name string) error {
	if err := s.next.DeletePartDefinition(ctx, name); err != nil {
		return err
	}
	s.cache.Delete(partKey(name))
	s.cache.Delete(partListKey)
	return nil
}

func (s *Store) AlterPartDefinition(ctx context.Context, name string, mutate func(*contentdef.ContentPartDefinition)) (*contentdef.ContentPartDefinition, error) {
	def, err := s.next.AlterPartDefinition(ctx, name, mutate)
	if err != nil {
		s.cache.Delete(partKey(name))
		s.cache.Delete(partListKey)
		return nil, err
	}
	s.cache.SetDefault(partKey(name), def.Clone())
	s.cache.Delete(partListKey)
	return def, nil
}

// Flush drops every cached entry.
func (s *Store) Flush() {
	s.cache.Flush()
}
