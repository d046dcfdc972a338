package contentdef

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/exp/slices"
)

// service implements the Service interface
type service struct {
	store    DefinitionStore
	registry ProviderRegistry
	notifier ChangeNotifier
	items    ContentItemStore
	logger   *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithDefinitionStore sets the definition store gateway for the service
func WithDefinitionStore(store DefinitionStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithProviderRegistry sets the part/field provider registry
func WithProviderRegistry(registry ProviderRegistry) Option {
	return func(s *service) {
		s.registry = registry
	}
}

// WithNotifier sets the change notifier for the service
func WithNotifier(notifier ChangeNotifier) Option {
	return func(s *service) {
		s.notifier = notifier
	}
}

// WithContentItemStore sets the content item collaborator
func WithContentItemStore(items ContentItemStore) Option {
	return func(s *service) {
		s.items = items
	}
}

// WithLogger sets the logger used to report post-commit notifier failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("definition store is required")
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.notifier == nil {
		s.notifier = NewNoopNotifier()
	}
	if s.items == nil {
		s.items = NewNoopContentItemStore()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// notifyErr reports a post-commit notifier failure. The definition change is
// already committed, so the failure never surfaces to the caller.
func (s *service) notifyErr(event string, err error, args ...any) {
	if err == nil {
		return
	}
	args = append(args, "error", err)
	s.logger.Warn("change notification failed", append([]any{"event", event}, args...)...)
}

// Type operations

func (s *service) ListTypes(ctx context.Context) ([]TypeSummary, error) {
	defs, err := s.store.ListTypeDefinitions(ctx)
	if err != nil {
		return nil, &DefinitionError{Op: "list_types", Err: err}
	}

	summaries := make([]TypeSummary, 0, len(defs))
	for _, def := range defs {
		summaries = append(summaries, TypeSummary{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Settings:    def.Settings,
		})
	}
	slices.SortFunc(summaries, func(a, b TypeSummary) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return summaries, nil
}

func (s *service) GetType(ctx context.Context, name string) (*TypeSummary, error) {
	def, err := s.store.GetTypeDefinition(ctx, name)
	if err != nil {
		return nil, &DefinitionError{Name: name, Op: "get_type", Err: err}
	}
	if def == nil {
		return nil, nil
	}
	return &TypeSummary{Name: def.Name, DisplayName: def.DisplayName, Settings: def.Settings}, nil
}

func (s *service) AddType(ctx context.Context, name, displayName string) (*ContentTypeDefinition, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, &DefinitionError{Name: name, Op: "add_type", Err: ErrDisplayNameRequired}
	}

	if name == "" {
		generated, err := s.GenerateTypeName(ctx, displayName)
		if err != nil {
			return nil, err
		}
		name = generated
	} else {
		first := []rune(name)[0]
		if !unicode.IsLetter(first) {
			return nil, &DefinitionError{Name: name, Op: "add_type", Err: ErrInvalidTypeName}
		}
		for {
			existing, err := s.store.GetTypeDefinition(ctx, name)
			if err != nil {
				return nil, &DefinitionError{Name: name, Op: "add_type", Err: err}
			}
			if existing == nil {
				break
			}
			name = VersionName(name)
		}
	}

	def, err := s.store.AlterTypeDefinition(ctx, name, func(t *ContentTypeDefinition) {
		t.DisplayName = displayName
		t.Settings = DefaultTypeSettings()
	})
	if err != nil {
		return nil, &DefinitionError{Name: name, Op: "add_type", Err: err}
	}

	s.notifyErr("type_created", s.notifier.TypeCreated(ctx, def), "type", def.Name)

	return def, nil
}

func (s *service) RemoveType(ctx context.Context, name string, deleteContent bool) error {
	def, err := s.store.GetTypeDefinition(ctx, name)
	if err != nil {
		return &DefinitionError{Name: name, Op: "remove_type", Err: err}
	}
	if def == nil {
		return &DefinitionError{Name: name, Op: "remove_type", Err: ErrTypeNotFound}
	}

	// Detach every part before the type record goes away. The type's own
	// implicit part, the one sharing the type's name, must not outlive it.
	// Associations are by name only, so the implicit part may have no
	// persisted definition to delete.
	for _, part := range def.Parts {
		if err := s.RemovePartFromType(ctx, part.PartName, name); err != nil {
			return err
		}
		if part.PartName == name {
			if err := s.RemovePart(ctx, name); err != nil && !errors.Is(err, ErrPartNotFound) {
				return err
			}
		}
	}

	if err := s.store.DeleteTypeDefinition(ctx, name); err != nil {
		return &DefinitionError{Name: name, Op: "remove_type", Err: err}
	}

	if deleteContent {
		// Best effort; a deferred job would be the better home for this.
		if err := s.items.DeleteItems(ctx, name); err != nil {
			s.logger.Warn("content item deletion failed", "type", name, "error", err)
		}
	}

	s.notifyErr("type_removed", s.notifier.TypeRemoved(ctx, def), "type", name)

	return nil
}

// Type/part association operations

// AddPartToType attaches the named part to the named type. Re-attaching an
// already-attached part is an idempotent no-op that keeps the existing
// association settings and raises no notification.
func (s *service) AddPartToType(ctx context.Context, partName, typeName string) error {
	attached := false
	_, err := s.store.AlterTypeDefinition(ctx, typeName, func(t *ContentTypeDefinition) {
		if t.Part(partName) != nil {
			return
		}
		t.Parts = append(t.Parts, ContentTypePartDefinition{PartName: partName})
		attached = true
	})
	if err != nil {
		return &DefinitionError{Name: typeName, Op: "add_part_to_type", Err: err}
	}

	if attached {
		s.notifyErr("part_attached", s.notifier.PartAttached(ctx, typeName, partName), "type", typeName, "part", partName)
	}

	return nil
}

func (s *service) RemovePartFromType(ctx context.Context, partName, typeName string) error {
	_, err := s.store.AlterTypeDefinition(ctx, typeName, func(t *ContentTypeDefinition) {
		parts := t.Parts[:0]
		for _, p := range t.Parts {
			if p.PartName != partName {
				parts = append(parts, p)
			}
		}
		t.Parts = parts
	})
	if err != nil {
		return &DefinitionError{Name: typeName, Op: "remove_part_from_type", Err: err}
	}

	s.notifyErr("part_detached", s.notifier.PartDetached(ctx, typeName, partName), "type", typeName, "part", partName)

	return nil
}

// Part operations

// ListParts lists part summaries sorted by display name. Types implicitly
// expose their own part under the same name, so a persisted part named after a
// type is not listed twice. Unless metadataOnly is set, code-declared parts
// not shadowed by a persisted definition of the same name are included.
func (s *service) ListParts(ctx context.Context, metadataOnly bool) ([]PartSummary, error) {
	typeDefs, err := s.store.ListTypeDefinitions(ctx)
	if err != nil {
		return nil, &DefinitionError{Op: "list_parts", Err: err}
	}
	typeNames := make(map[string]bool, len(typeDefs))
	for _, t := range typeDefs {
		typeNames[t.Name] = true
	}

	partDefs, err := s.store.ListPartDefinitions(ctx)
	if err != nil {
		return nil, &DefinitionError{Op: "list_parts", Err: err}
	}

	userNames := make(map[string]bool, len(partDefs))
	summaries := make([]PartSummary, 0, len(partDefs))
	for _, p := range partDefs {
		userNames[p.Name] = true
		if typeNames[p.Name] {
			continue
		}
		summaries = append(summaries, PartSummary{Name: p.Name, DisplayName: p.Name})
	}

	if !metadataOnly {
		for _, provider := range s.registry.ListPartProviders() {
			info := provider.GetPartInfo()
			if userNames[info.Name] {
				continue
			}
			displayName := info.DisplayName
			if displayName == "" {
				displayName = info.Name
			}
			summaries = append(summaries, PartSummary{Name: info.Name, DisplayName: displayName, CodeDefined: true})
		}
	}

	slices.SortFunc(summaries, func(a, b PartSummary) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return summaries, nil
}

func (s *service) GetPart(ctx context.Context, name string) (*PartSummary, error) {
	def, err := s.store.GetPartDefinition(ctx, name)
	if err != nil {
		return nil, &DefinitionError{Name: name, Op: "get_part", Err: err}
	}
	if def == nil {
		return nil, nil
	}
	return &PartSummary{Name: def.Name, DisplayName: def.Name}, nil
}

// AddPart creates a part definition with the attachable setting. An empty name
// is a soft no-op returning (nil, nil); a duplicate name is an error.
func (s *service) AddPart(ctx context.Context, name string) (*ContentPartDefinition, error) {
	if name == "" {
		return nil, nil
	}

	existing, err := s.store.GetPartDefinition(ctx, name)
	if err != nil {
		return nil, &DefinitionError{Name: name, Op: "add_part", Err: err}
	}
	if existing != nil {
		return nil, &DefinitionError{Name: name, Op: "add_part", Err: ErrPartAlreadyExists}
	}

	def, err := s.store.AlterPartDefinition(ctx, name, func(p *ContentPartDefinition) {
		p.Settings.Attachable = true
	})
	if err != nil {
		return nil, &DefinitionError{Name: name, Op: "add_part", Err: err}
	}

	s.notifyErr("part_created", s.notifier.PartCreated(ctx, def), "part", name)

	return def, nil
}

func (s *service) RemovePart(ctx context.Context, name string) error {
	def, err := s.store.GetPartDefinition(ctx, name)
	if err != nil {
		return &DefinitionError{Name: name, Op: "remove_part", Err: err}
	}
	if def == nil {
		return &DefinitionError{Name: name, Op: "remove_part", Err: ErrPartNotFound}
	}

	// Every field goes first, so that field detachment notifications fire.
	for _, field := range def.Fields {
		if err := s.RemoveFieldFromPart(ctx, field.Name, name); err != nil {
			return err
		}
	}

	if err := s.store.DeletePartDefinition(ctx, name); err != nil {
		return &DefinitionError{Name: name, Op: "remove_part", Err: err}
	}

	s.notifyErr("part_removed", s.notifier.PartRemoved(ctx, def), "part", name)

	return nil
}

// Field operations

// ListFields lists all registered field types, excluding providers that
// report no info.
func (s *service) ListFields(ctx context.Context) ([]FieldTypeInfo, error) {
	providers := s.registry.ListFieldProviders()
	infos := make([]FieldTypeInfo, 0, len(providers))
	for _, provider := range providers {
		info := provider.GetFieldInfo()
		if info == nil {
			continue
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

func (s *service) AddFieldToPart(ctx context.Context, req AddFieldRequest) error {
	fieldName := ToSafeName(req.FieldName)
	if fieldName == "" {
		return &DefinitionError{Name: req.FieldName, Op: "add_field_to_part", Err: ErrInvalidFieldName}
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = fieldName
	}

	_, err := s.store.AlterPartDefinition(ctx, req.PartName, func(p *ContentPartDefinition) {
		if existing := p.Field(fieldName); existing != nil {
			existing.FieldTypeName = req.FieldTypeName
			existing.DisplayName = displayName
			return
		}
		p.Fields = append(p.Fields, ContentPartFieldDefinition{
			Name:          fieldName,
			DisplayName:   displayName,
			FieldTypeName: req.FieldTypeName,
		})
	})
	if err != nil {
		return &DefinitionError{Name: req.PartName, Op: "add_field_to_part", Err: err}
	}

	s.notifyErr("field_attached",
		s.notifier.FieldAttached(ctx, req.PartName, req.FieldTypeName, fieldName, displayName),
		"part", req.PartName, "field", fieldName)

	return nil
}

func (s *service) RemoveFieldFromPart(ctx context.Context, fieldName, partName string) error {
	def, err := s.store.GetPartDefinition(ctx, partName)
	if err != nil {
		return &DefinitionError{Name: partName, Op: "remove_field_from_part", Err: err}
	}
	if def == nil {
		return &DefinitionError{Name: partName, Op: "remove_field_from_part", Err: ErrPartNotFound}
	}
	if def.Field(fieldName) == nil {
		return &DefinitionError{Name: fieldName, Op: "remove_field_from_part", Err: ErrFieldNotFound}
	}

	_, err = s.store.AlterPartDefinition(ctx, partName, func(p *ContentPartDefinition) {
		fields := p.Fields[:0]
		for _, f := range p.Fields {
			if f.Name != fieldName {
				fields = append(fields, f)
			}
		}
		p.Fields = fields
	})
	if err != nil {
		return &DefinitionError{Name: partName, Op: "remove_field_from_part", Err: err}
	}

	s.notifyErr("field_detached", s.notifier.FieldDetached(ctx, partName, fieldName), "part", partName, "field", fieldName)

	return nil
}

// AlterFieldDisplayName updates only the display name of an existing field.
// Display-name edits raise no change notification.
func (s *service) AlterFieldDisplayName(ctx context.Context, partName, fieldName, displayName string) error {
	def, err := s.store.GetPartDefinition(ctx, partName)
	if err != nil {
		return &DefinitionError{Name: partName, Op: "alter_field", Err: err}
	}
	if def == nil {
		return &DefinitionError{Name: partName, Op: "alter_field", Err: ErrPartNotFound}
	}
	if def.Field(fieldName) == nil {
		return &DefinitionError{Name: fieldName, Op: "alter_field", Err: ErrFieldNotFound}
	}

	_, err = s.store.AlterPartDefinition(ctx, partName, func(p *ContentPartDefinition) {
		if field := p.Field(fieldName); field != nil {
			field.DisplayName = displayName
		}
	})
	if err != nil {
		return &DefinitionError{Name: partName, Op: "alter_field", Err: err}
	}

	return nil
}
