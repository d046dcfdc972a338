package contentdef

import (
	"context"

	"github.com/google/uuid"
)

// NoopNotifier is a no-operation implementation of ChangeNotifier
// Useful when no subscriber cares about structural changes or for testing
type NoopNotifier struct{}

// NewNoopNotifier creates a new no-operation change notifier
func NewNoopNotifier() ChangeNotifier {
	return &NoopNotifier{}
}

// TypeCreated does nothing and returns nil
func (n *NoopNotifier) TypeCreated(ctx context.Context, def *ContentTypeDefinition) error {
	return nil
}

// TypeRemoved does nothing and returns nil
func (n *NoopNotifier) TypeRemoved(ctx context.Context, def *ContentTypeDefinition) error {
	return nil
}

// PartAttached does nothing and returns nil
func (n *NoopNotifier) PartAttached(ctx context.Context, typeName, partName string) error {
	return nil
}

// PartDetached does nothing and returns nil
func (n *NoopNotifier) PartDetached(ctx context.Context, typeName, partName string) error {
	return nil
}

// PartCreated does nothing and returns nil
func (n *NoopNotifier) PartCreated(ctx context.Context, def *ContentPartDefinition) error {
	return nil
}

// PartRemoved does nothing and returns nil
func (n *NoopNotifier) PartRemoved(ctx context.Context, def *ContentPartDefinition) error {
	return nil
}

// FieldAttached does nothing and returns nil
func (n *NoopNotifier) FieldAttached(ctx context.Context, partName, fieldTypeName, fieldName, displayName string) error {
	return nil
}

// FieldDetached does nothing and returns nil
func (n *NoopNotifier) FieldDetached(ctx context.Context, partName, fieldName string) error {
	return nil
}

// NoopContentItemStore is a no-operation implementation of ContentItemStore.
// It reports no items and deletes nothing.
type NoopContentItemStore struct{}

// NewNoopContentItemStore creates a new no-operation content item store
func NewNoopContentItemStore() ContentItemStore {
	return &NoopContentItemStore{}
}

// CountItems always reports zero items
func (n *NoopContentItemStore) CountItems(ctx context.Context, typeName string) (int, error) {
	return 0, nil
}

// ListItemIDs always returns an empty list
func (n *NoopContentItemStore) ListItemIDs(ctx context.Context, typeName string) ([]uuid.UUID, error) {
	return nil, nil
}

// DeleteItems does nothing and returns nil
func (n *NoopContentItemStore) DeleteItems(ctx context.Context, typeName string) error {
	return nil
}
