package contentdef

import (
	"context"
	"log/slog"
)

// ChangeNotifier defines the interface for structural change notifications.
// The service calls exactly one method per committed mutation, synchronously
// and post-commit. A notifier error never rolls the committed change back; the
// service logs it and returns success to the caller.
type ChangeNotifier interface {
	// TypeCreated is fired when a type definition is created
	TypeCreated(ctx context.Context, def *ContentTypeDefinition) error

	// TypeRemoved is fired after a type definition record is gone
	TypeRemoved(ctx context.Context, def *ContentTypeDefinition) error

	// PartAttached is fired when a part is attached to a type
	PartAttached(ctx context.Context, typeName, partName string) error

	// PartDetached is fired when a part is detached from a type
	PartDetached(ctx context.Context, typeName, partName string) error

	// PartCreated is fired when a part definition is created
	PartCreated(ctx context.Context, def *ContentPartDefinition) error

	// PartRemoved is fired when a part definition is deleted
	PartRemoved(ctx context.Context, def *ContentPartDefinition) error

	// FieldAttached is fired when a field is committed onto a part
	FieldAttached(ctx context.Context, partName, fieldTypeName, fieldName, displayName string) error

	// FieldDetached is fired when a field is removed from a part
	FieldDetached(ctx context.Context, partName, fieldName string) error
}

// Handler functions, one type per event kind. Notifiers fans each event out to
// the registered handlers in order.

// TypeCreatedHandler handles a type creation event
type TypeCreatedHandler func(nctx *NotifyContext, def *ContentTypeDefinition) error

// TypeRemovedHandler handles a type removal event
type TypeRemovedHandler func(nctx *NotifyContext, def *ContentTypeDefinition) error

// PartAttachedHandler handles a part attachment event
type PartAttachedHandler func(nctx *NotifyContext, typeName, partName string) error

// PartDetachedHandler handles a part detachment event
type PartDetachedHandler func(nctx *NotifyContext, typeName, partName string) error

// PartCreatedHandler handles a part creation event
type PartCreatedHandler func(nctx *NotifyContext, def *ContentPartDefinition) error

// PartRemovedHandler handles a part removal event
type PartRemovedHandler func(nctx *NotifyContext, def *ContentPartDefinition) error

// FieldAttachedHandler handles a field attachment event
type FieldAttachedHandler func(nctx *NotifyContext, partName, fieldTypeName, fieldName, displayName string) error

// FieldDetachedHandler handles a field detachment event
type FieldDetachedHandler func(nctx *NotifyContext, partName, fieldName string) error

// NotifyContext carries information through a handler chain
type NotifyContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between handlers
	StopChain bool                   // Set to true to stop processing remaining handlers
}

// NewNotifyContext creates a new notify context
func NewNotifyContext(ctx context.Context) *NotifyContext {
	return &NotifyContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// Notifiers is a synchronous fan-out ChangeNotifier holding registered handler
// functions per event kind. Handlers run in registration order; a handler may
// stop the remaining chain via NotifyContext.StopChain. The first handler
// error aborts the chain and is returned to the service, which logs it; the
// committed definition change stands either way.
type Notifiers struct {
	TypeCreatedHandlers   []TypeCreatedHandler
	TypeRemovedHandlers   []TypeRemovedHandler
	PartAttachedHandlers  []PartAttachedHandler
	PartDetachedHandlers  []PartDetachedHandler
	PartCreatedHandlers   []PartCreatedHandler
	PartRemovedHandlers   []PartRemovedHandler
	FieldAttachedHandlers []FieldAttachedHandler
	FieldDetachedHandlers []FieldDetachedHandler
}

// TypeCreated runs all TypeCreated handlers
func (n *Notifiers) TypeCreated(ctx context.Context, def *ContentTypeDefinition) error {
	if len(n.TypeCreatedHandlers) == 0 {
		return nil
	}

	nctx := NewNotifyContext(ctx)
	for _, handler := range n.TypeCreatedHandlers {
		if err := handler(nctx, def); err != nil {
			return err
		}
		if nctx.StopChain {
			break
		}
	}
	return nil
}

// TypeRemoved runs all TypeRemoved handlers
func (n *Notifiers) TypeRemoved(ctx context.Context, def *ContentTypeDefinition) error {
	if len(n.TypeRemovedHandlers) == 0 {
		return nil
	}

	nctx := NewNotifyContext(ctx)
	for _, handler := range n.TypeRemovedHandlers {
		if err := handler(nctx, def); err != nil {
			return err
		}
		if nctx.StopChain {
			break
		}
	}
	return nil
}

// PartAttached runs all PartAttached handlers
func (n *Notifiers) PartAttached(ctx context.Context, typeName, partName string) error {
	if len(n.PartAttachedHandlers) == 0 {
		return nil
	}

	nctx := NewNotifyContext(ctx)
	for _, handler := range n.PartAttachedHandlers {
		if err := handler(nctx, typeName, partName); err != nil {
			return err
		}
		if nctx.StopChain {
			break
		}
	}
	return nil
}

// PartDetached runs all PartDetached handlers
func (n *Notifiers) PartDetached(ctx context.Context, typeName, partName string) error {
	if len(n.PartDetachedHandlers) == 0 {
		return nil
	}

	nctx := NewNotifyContext(ctx)
	for _, handler := range n.PartDetachedHandlers {
		if err := handler(nctx, typeName, partName); err != nil {
			return err
		}
		if nctx.StopChain {
			break
		}
	}
	return nil
}

// PartCreated runs all PartCreated handlers
func (n *Notifiers) PartCreated(ctx context.Context, def *ContentPartDefinition) error {
	if len(n.PartCreatedHandlers) == 0 {
		return nil
	}

	nctx := NewNotifyContext(ctx)
	for _, handler := range n.PartCreatedHandlers {
		if err := handler(nctx, def); err != nil {
			return err
		}
		if nctx.StopChain {
			break
		}
	}
	return nil
}

// PartRemoved runs all PartRemoved handlers
func (n *Notifiers) PartRemoved(ctx context.Context, def *ContentPartDefinition) error {
	if len(n.PartRemovedHandlers) == 0 {
		return nil
	}

	nctx := NewNotifyContext(ctx)
	for _, handler := range n.PartRemovedHandlers {
		if err := handler(nctx, def); err != nil {
			return err
		}
		if nctx.StopChain {
			break
		}
	}
	return nil
}

// FieldAttached runs all FieldAttached handlers
func (n *Notifiers) FieldAttached(ctx context.Context, partName, fieldTypeName, fieldName, displayName string) error {
	if len(n.FieldAttachedHandlers) == 0 {
		return nil
	}

	nctx := NewNotifyContext(ctx)
	for _, handler := range n.FieldAttachedHandlers {
		if err := handler(nctx, partName, fieldTypeName, fieldName, displayName); err != nil {
			return err
		}
		if nctx.StopChain {
			break
		}
	}
	return nil
}

// FieldDetached runs all FieldDetached handlers
func (n *Notifiers) FieldDetached(ctx context.Context, partName, fieldName string) error {
	if len(n.FieldDetachedHandlers) == 0 {
		return nil
	}

	nctx := NewNotifyContext(ctx)
	for _, handler := range n.FieldDetachedHandlers {
		if err := handler(nctx, partName, fieldName); err != nil {
			return err
		}
		if nctx.StopChain {
			break
		}
	}
	return nil
}

// NewLoggingNotifier returns a ChangeNotifier that logs every structural
// change through the given logger. A nil logger falls back to slog.Default.
func NewLoggingNotifier(logger *slog.Logger) ChangeNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifiers{
		TypeCreatedHandlers: []TypeCreatedHandler{
			func(nctx *NotifyContext, def *ContentTypeDefinition) error {
				logger.Info("content type created", "type", def.Name, "display_name", def.DisplayName)
				return nil
			},
		},
		TypeRemovedHandlers: []TypeRemovedHandler{
			func(nctx *NotifyContext, def *ContentTypeDefinition) error {
				logger.Info("content type removed", "type", def.Name)
				return nil
			},
		},
		PartAttachedHandlers: []PartAttachedHandler{
			func(nctx *NotifyContext, typeName, partName string) error {
				logger.Info("part attached", "type", typeName, "part", partName)
				return nil
			},
		},
		PartDetachedHandlers: []PartDetachedHandler{
			func(nctx *NotifyContext, typeName, partName string) error {
				logger.Info("part detached", "type", typeName, "part", partName)
				return nil
			},
		},
		PartCreatedHandlers: []PartCreatedHandler{
			func(nctx *NotifyContext, def *ContentPartDefinition) error {
				logger.Info("part created", "part", def.Name)
				return nil
			},
		},
		PartRemovedHandlers: []PartRemovedHandler{
			func(nctx *NotifyContext, def *ContentPartDefinition) error {
				logger.Info("part removed", "part", def.Name)
				return nil
			},
		},
		FieldAttachedHandlers: []FieldAttachedHandler{
			func(nctx *NotifyContext, partName, fieldTypeName, fieldName, displayName string) error {
				logger.Info("field attached", "part", partName, "field", fieldName, "field_type", fieldTypeName, "display_name", displayName)
				return nil
			},
		},
		FieldDetachedHandlers: []FieldDetachedHandler{
			func(nctx *NotifyContext, partName, fieldName string) error {
				logger.Info("field detached", "part", partName, "field", fieldName)
				return nil
			},
		},
	}
}
