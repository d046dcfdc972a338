package contentdef

import "context"

// Service defines the main interface for the content definition library
type Service interface {
	// Type operations
	ListTypes(ctx context.Context) ([]TypeSummary, error)
	GetType(ctx context.Context, name string) (*TypeSummary, error)
	AddType(ctx context.Context, name, displayName string) (*ContentTypeDefinition, error)
	RemoveType(ctx context.Context, name string, deleteContent bool) error

	// Type/part association operations
	AddPartToType(ctx context.Context, partName, typeName string) error
	RemovePartFromType(ctx context.Context, partName, typeName string) error

	// Part operations
	ListParts(ctx context.Context, metadataOnly bool) ([]PartSummary, error)
	GetPart(ctx context.Context, name string) (*PartSummary, error)
	AddPart(ctx context.Context, name string) (*ContentPartDefinition, error)
	RemovePart(ctx context.Context, name string) error

	// Field operations
	ListFields(ctx context.Context) ([]FieldTypeInfo, error)
	AddFieldToPart(ctx context.Context, req AddFieldRequest) error
	RemoveFieldFromPart(ctx context.Context, fieldName, partName string) error
	AlterFieldDisplayName(ctx context.Context, partName, fieldName, displayName string) error

	// Name generation, exposed for callers that need a name before committing
	GenerateTypeName(ctx context.Context, displayName string) (string, error)
	GenerateFieldName(ctx context.Context, partOrTypeName, displayName string) (string, error)
}
