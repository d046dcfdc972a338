package contentdef

import (
	"context"

	"github.com/google/uuid"
)

// DefinitionStore defines the interface for type and part definition
// persistence. The service hands whole-definition transformations to the
// store; it never computes diffs.
//
// Get operations return (nil, nil) for an absent name. Alter operations load
// the current definition, or initialize an empty one carrying the name, apply
// the caller-supplied mutation, persist the result atomically against the
// backing store, and return the stored definition.
type DefinitionStore interface {
	// Type definition operations
	GetTypeDefinition(ctx context.Context, name string) (*ContentTypeDefinition, error)
	ListTypeDefinitions(ctx context.Context) ([]*ContentTypeDefinition, error)
	StoreTypeDefinition(ctx context.Context, def *ContentTypeDefinition) error
	DeleteTypeDefinition(ctx context.Context, name string) error
	AlterTypeDefinition(ctx context.Context, name string, mutate func(*ContentTypeDefinition)) (*ContentTypeDefinition, error)

	// Part definition operations
	GetPartDefinition(ctx context.Context, name string) (*ContentPartDefinition, error)
	ListPartDefinitions(ctx context.Context) ([]*ContentPartDefinition, error)
	StorePartDefinition(ctx context.Context, def *ContentPartDefinition) error
	DeletePartDefinition(ctx context.Context, name string) error
	AlterPartDefinition(ctx context.Context, name string, mutate func(*ContentPartDefinition)) (*ContentPartDefinition, error)
}

// PartProvider exposes a code-declared part. Code-declared parts have no
// standalone persisted definition and are shadowed by a persisted definition
// of the same name in listings.
type PartProvider interface {
	GetPartInfo() PartInfo
}

// FieldProvider exposes a registered field type. A provider may return nil to
// report no info; such providers are excluded from listings.
type FieldProvider interface {
	GetFieldInfo() *FieldTypeInfo
}

// ProviderRegistry exposes the statically declared parts and field types.
type ProviderRegistry interface {
	ListPartProviders() []PartProvider
	ListFieldProviders() []FieldProvider
}

// ContentItemStore is the collaborator holding the content items shaped by the
// definitions. It is consulted only when a type is removed together with its
// content; deletion is synchronous best-effort.
type ContentItemStore interface {
	CountItems(ctx context.Context, typeName string) (int, error)
	ListItemIDs(ctx context.Context, typeName string) ([]uuid.UUID, error)
	DeleteItems(ctx context.Context, typeName string) error
}
