package contentdef_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/contentdef/pkg/contentdef"
	memoryitems "github.com/contentforge/contentdef/pkg/contentdef/itemstore/memory"
	"github.com/contentforge/contentdef/pkg/contentdef/repo/memory"
)

// event is a flattened change notification captured by recordingNotifier.
type event struct {
	kind string
	name string // type name for type events, part name otherwise
	peer string // part name for attach/detach, field name for field events
}

// recordingNotifier captures every change notification for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingNotifier) record(e event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) all() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingNotifier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recordingNotifier) TypeCreated(ctx context.Context, def *contentdef.ContentTypeDefinition) error {
	return r.record(event{kind: "type_created", name: def.Name})
}

func (r *recordingNotifier) TypeRemoved(ctx context.Context, def *contentdef.ContentTypeDefinition) error {
	return r.record(event{kind: "type_removed", name: def.Name})
}

func (r *recordingNotifier) PartAttached(ctx context.Context, typeName, partName string) error {
	return r.record(event{kind: "part_attached", name: typeName, peer: partName})
}

func (r *recordingNotifier) PartDetached(ctx context.Context, typeName, partName string) error {
	return r.record(event{kind: "part_detached", name: typeName, peer: partName})
}

func (r *recordingNotifier) PartCreated(ctx context.Context, def *contentdef.ContentPartDefinition) error {
	return r.record(event{kind: "part_created", name: def.Name})
}

func (r *recordingNotifier) PartRemoved(ctx context.Context, def *contentdef.ContentPartDefinition) error {
	return r.record(event{kind: "part_removed", name: def.Name})
}

func (r *recordingNotifier) FieldAttached(ctx context.Context, partName, fieldTypeName, fieldName, displayName string) error {
	return r.record(event{kind: "field_attached", name: partName, peer: fieldName})
}

func (r *recordingNotifier) FieldDetached(ctx context.Context, partName, fieldName string) error {
	return r.record(event{kind: "field_detached", name: partName, peer: fieldName})
}

func setupTestService(t *testing.T, options ...contentdef.Option) (contentdef.Service, *recordingNotifier) {
	t.Helper()

	notifier := &recordingNotifier{}
	opts := append([]contentdef.Option{
		contentdef.WithDefinitionStore(memory.New()),
		contentdef.WithNotifier(notifier),
	}, options...)

	svc, err := contentdef.New(opts...)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc, notifier
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []contentdef.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []contentdef.Option{},
			expectError: true,
		},
		{
			name: "with definition store should succeed",
			options: []contentdef.Option{
				contentdef.WithDefinitionStore(memory.New()),
			},
			expectError: false,
		},
		{
			name: "with full collaborators should succeed",
			options: []contentdef.Option{
				contentdef.WithDefinitionStore(memory.New()),
				contentdef.WithProviderRegistry(contentdef.NewRegistry()),
				contentdef.WithNotifier(contentdef.NewNoopNotifier()),
				contentdef.WithContentItemStore(memoryitems.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := contentdef.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestAddType(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit name", func(t *testing.T) {
		svc, notifier := setupTestService(t)

		def, err := svc.AddType(ctx, "article", "Article")
		require.NoError(t, err)
		assert.Equal(t, "article", def.Name)
		assert.Equal(t, "Article", def.DisplayName)
		assert.Equal(t, contentdef.DefaultTypeSettings(), def.Settings)

		assert.Equal(t, []event{{kind: "type_created", name: "article"}}, notifier.all())
	})

	t.Run("generated name", func(t *testing.T) {
		svc, _ := setupTestService(t)

		def, err := svc.AddType(ctx, "", "Blog Post")
		require.NoError(t, err)
		assert.Equal(t, "blogpost", def.Name)
	})

	t.Run("empty display name rejected", func(t *testing.T) {
		svc, notifier := setupTestService(t)

		_, err := svc.AddType(ctx, "article", "   ")
		require.Error(t, err)
		assert.True(t, errors.Is(err, contentdef.ErrDisplayNameRequired))
		assert.Empty(t, notifier.all())
	})

	t.Run("name must start with a letter", func(t *testing.T) {
		svc, _ := setupTestService(t)

		_, err := svc.AddType(ctx, "1article", "Article")
		require.Error(t, err)
		assert.True(t, errors.Is(err, contentdef.ErrInvalidTypeName))
	})

	t.Run("explicit name collision is versioned", func(t *testing.T) {
		svc, _ := setupTestService(t)

		_, err := svc.AddType(ctx, "article", "Article")
		require.NoError(t, err)

		def, err := svc.AddType(ctx, "article", "Another Article")
		require.NoError(t, err)
		assert.Equal(t, "article-2", def.Name)

		def, err = svc.AddType(ctx, "article", "Yet Another")
		require.NoError(t, err)
		assert.Equal(t, "article-3", def.Name)
	})

	t.Run("same display name twice yields distinct types", func(t *testing.T) {
		svc, _ := setupTestService(t)

		first, err := svc.AddType(ctx, "", "Blog Post")
		require.NoError(t, err)
		second, err := svc.AddType(ctx, "", "Blog Post")
		require.NoError(t, err)

		assert.NotEqual(t, first.Name, second.Name)

		types, err := svc.ListTypes(ctx)
		require.NoError(t, err)
		assert.Len(t, types, 2)
	})
}

func TestGetType(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	got, err := svc.GetType(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.AddType(ctx, "article", "Article")
	require.NoError(t, err)

	got, err = svc.GetType(ctx, "article")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Article", got.DisplayName)
}

func TestListTypesSortedByDisplayName(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	_, err := svc.AddType(ctx, "zeta", "Zeta")
	require.NoError(t, err)
	_, err = svc.AddType(ctx, "alpha", "Alpha")
	require.NoError(t, err)
	_, err = svc.AddType(ctx, "mid", "Middle")
	require.NoError(t, err)

	types, err := svc.ListTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, "Alpha", types[0].DisplayName)
	assert.Equal(t, "Middle", types[1].DisplayName)
	assert.Equal(t, "Zeta", types[2].DisplayName)
}

func TestAddPartToType(t *testing.T) {
	ctx := context.Background()
	svc, notifier := setupTestService(t)

	_, err := svc.AddType(ctx, "article", "Article")
	require.NoError(t, err)
	notifier.reset()

	err = svc.AddPartToType(ctx, "BodyPart", "article")
	require.NoError(t, err)
	assert.Equal(t, []event{{kind: "part_attached", name: "article", peer: "BodyPart"}}, notifier.all())

	// Re-attaching is an idempotent no-op and raises no notification
	notifier.reset()
	err = svc.AddPartToType(ctx, "BodyPart", "article")
	require.NoError(t, err)
	assert.Empty(t, notifier.all())
}

func TestRemovePartFromType(t *testing.T) {
	ctx := context.Background()
	svc, notifier := setupTestService(t)

	_, err := svc.AddType(ctx, "article", "Article")
	require.NoError(t, err)
	err = svc.AddPartToType(ctx, "BodyPart", "article")
	require.NoError(t, err)
	notifier.reset()

	err = svc.RemovePartFromType(ctx, "BodyPart", "article")
	require.NoError(t, err)
	assert.Equal(t, []event{{kind: "part_detached", name: "article", peer: "BodyPart"}}, notifier.all())
}

func TestAddPart(t *testing.T) {
	ctx := context.Background()

	t.Run("creates attachable part", func(t *testing.T) {
		svc, notifier := setupTestService(t)

		def, err := svc.AddPart(ctx, "BodyPart")
		require.NoError(t, err)
		assert.Equal(t, "BodyPart", def.Name)
		assert.True(t, def.Settings.Attachable)
		assert.Equal(t, []event{{kind: "part_created", name: "BodyPart"}}, notifier.all())
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		svc, _ := setupTestService(t)

		_, err := svc.AddPart(ctx, "BodyPart")
		require.NoError(t, err)

		_, err = svc.AddPart(ctx, "BodyPart")
		require.Error(t, err)
		assert.True(t, errors.Is(err, contentdef.ErrPartAlreadyExists))
	})

	t.Run("empty name is a soft no-op", func(t *testing.T) {
		svc, notifier := setupTestService(t)

		def, err := svc.AddPart(ctx, "")
		assert.NoError(t, err)
		assert.Nil(t, def)
		assert.Empty(t, notifier.all())
	})
}

func TestRemovePart(t *testing.T) {
	ctx := context.Background()

	t.Run("missing part", func(t *testing.T) {
		svc, _ := setupTestService(t)

		err := svc.RemovePart(ctx, "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, contentdef.ErrPartNotFound))
	})

	t.Run("fields detach before the part goes", func(t *testing.T) {
		svc, notifier := setupTestService(t)

		_, err := svc.AddPart(ctx, "BodyPart")
		require.NoError(t, err)
		err = svc.AddFieldToPart(ctx, contentdef.AddFieldRequest{
			PartName:      "BodyPart",
			FieldName:     "Subtitle",
			FieldTypeName: "TextField",
		})
		require.NoError(t, err)
		notifier.reset()

		err = svc.RemovePart(ctx, "BodyPart")
		require.NoError(t, err)
		assert.Equal(t, []event{
			{kind: "field_detached", name: "BodyPart", peer: "subtitle"},
			{kind: "part_removed", name: "BodyPart"},
		}, notifier.all())

		got, err := svc.GetPart(ctx, "BodyPart")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestRemoveType(t *testing.T) {
	ctx := context.Background()

	t.Run("missing type", func(t *testing.T) {
		svc, _ := setupTestService(t)

		err := svc.RemoveType(ctx, "missing", false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, contentdef.ErrTypeNotFound))
	})

	t.Run("cascade removes implicit part, shared parts survive", func(t *testing.T) {
		svc, notifier := setupTestService(t)

		_, err := svc.AddType(ctx, "article", "Article")
		require.NoError(t, err)
		_, err = svc.AddPart(ctx, "article") // implicit part
		require.NoError(t, err)
		_, err = svc.AddPart(ctx, "BodyPart") // shared part
		require.NoError(t, err)
		err = svc.AddPartToType(ctx, "article", "article")
		require.NoError(t, err)
		err = svc.AddPartToType(ctx, "BodyPart", "article")
		require.NoError(t, err)
		notifier.reset()

		err = svc.RemoveType(ctx, "article", false)
		require.NoError(t, err)

		assert.Equal(t, []event{
			{kind: "part_detached", name: "article", peer: "article"},
			{kind: "part_removed", name: "article"},
			{kind: "part_detached", name: "article", peer: "BodyPart"},
			{kind: "type_removed", name: "article"},
		}, notifier.all())

		gotType, err := svc.GetType(ctx, "article")
		require.NoError(t, err)
		assert.Nil(t, gotType)

		// The implicit part is gone with its type; the shared part survives
		gotPart, err := svc.GetPart(ctx, "article")
		require.NoError(t, err)
		assert.Nil(t, gotPart)

		gotPart, err = svc.GetPart(ctx, "BodyPart")
		require.NoError(t, err)
		assert.NotNil(t, gotPart)
	})

	t.Run("type-named association without a persisted part", func(t *testing.T) {
		svc, notifier := setupTestService(t)

		// Attaching is by name only; a code-declared part named after the
		// type never gets a persisted definition to cascade into.
		_, err := svc.AddType(ctx, "article", "Article")
		require.NoError(t, err)
		err = svc.AddPartToType(ctx, "article", "article")
		require.NoError(t, err)
		notifier.reset()

		err = svc.RemoveType(ctx, "article", false)
		require.NoError(t, err)

		gotType, err := svc.GetType(ctx, "article")
		require.NoError(t, err)
		assert.Nil(t, gotType)

		assert.Equal(t, []event{
			{kind: "part_detached", name: "article", peer: "article"},
			{kind: "type_removed", name: "article"},
		}, notifier.all())
	})

	t.Run("deletes content when asked", func(t *testing.T) {
		items := memoryitems.New()
		svc, _ := setupTestService(t, contentdef.WithContentItemStore(items))

		_, err := svc.AddType(ctx, "article", "Article")
		require.NoError(t, err)
		items.CreateItem("article")
		items.CreateItem("article")
		items.CreateItem("page")

		err = svc.RemoveType(ctx, "article", true)
		require.NoError(t, err)

		count, err := items.CountItems(ctx, "article")
		require.NoError(t, err)
		assert.Zero(t, count)

		count, err = items.CountItems(ctx, "page")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("keeps content by default", func(t *testing.T) {
		items := memoryitems.New()
		svc, _ := setupTestService(t, contentdef.WithContentItemStore(items))

		_, err := svc.AddType(ctx, "article", "Article")
		require.NoError(t, err)
		items.CreateItem("article")

		err = svc.RemoveType(ctx, "article", false)
		require.NoError(t, err)

		count, err := items.CountItems(ctx, "article")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestListParts(t *testing.T) {
	ctx := context.Background()

	registry := contentdef.NewRegistry()
	registry.RegisterPartProvider(contentdef.StaticPart(contentdef.PartInfo{
		Name:        "TitlePart",
		DisplayName: "Title",
	}))
	registry.RegisterPartProvider(contentdef.StaticPart(contentdef.PartInfo{
		Name: "BodyPart",
	}))

	svc, _ := setupTestService(t, contentdef.WithProviderRegistry(registry))

	_, err := svc.AddType(ctx, "article", "Article")
	require.NoError(t, err)
	_, err = svc.AddPart(ctx, "article") // implicit part shares the type name
	require.NoError(t, err)
	_, err = svc.AddPart(ctx, "BodyPart") // shadows the code-declared part
	require.NoError(t, err)
	_, err = svc.AddPart(ctx, "QuotePart")
	require.NoError(t, err)

	t.Run("full listing", func(t *testing.T) {
		parts, err := svc.ListParts(ctx, false)
		require.NoError(t, err)

		byName := make(map[string]contentdef.PartSummary, len(parts))
		for _, p := range parts {
			byName[p.Name] = p
		}

		// Type-named part is folded into its type, user definition shadows
		// the code-declared BodyPart, TitlePart comes from its provider.
		require.Len(t, parts, 3)
		assert.NotContains(t, byName, "article")
		assert.False(t, byName["BodyPart"].CodeDefined)
		assert.False(t, byName["QuotePart"].CodeDefined)
		assert.True(t, byName["TitlePart"].CodeDefined)
		assert.Equal(t, "Title", byName["TitlePart"].DisplayName)
	})

	t.Run("metadata only excludes code-declared parts", func(t *testing.T) {
		parts, err := svc.ListParts(ctx, true)
		require.NoError(t, err)

		require.Len(t, parts, 2)
		for _, p := range parts {
			assert.False(t, p.CodeDefined)
		}
	})
}

func TestListFields(t *testing.T) {
	registry := contentdef.NewRegistry()
	registry.RegisterFieldProvider(contentdef.StaticField(contentdef.FieldTypeInfo{
		Name:        "TextField",
		DisplayName: "Text",
	}))
	// A provider with no info is excluded from listings
	registry.RegisterFieldProvider(contentdef.FieldProviderFunc(func() *contentdef.FieldTypeInfo {
		return nil
	}))

	svc, _ := setupTestService(t, contentdef.WithProviderRegistry(registry))

	fields, err := svc.ListFields(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "TextField", fields[0].Name)
}

func TestAddFieldToPart(t *testing.T) {
	ctx := context.Background()

	t.Run("sanitizes name and defaults display name", func(t *testing.T) {
		svc, notifier := setupTestService(t)

		_, err := svc.AddPart(ctx, "BodyPart")
		require.NoError(t, err)
		notifier.reset()

		err = svc.AddFieldToPart(ctx, contentdef.AddFieldRequest{
			PartName:      "BodyPart",
			FieldName:     "Sub Title!",
			FieldTypeName: "TextField",
		})
		require.NoError(t, err)
		assert.Equal(t, []event{{kind: "field_attached", name: "BodyPart", peer: "subtitle"}}, notifier.all())
	})

	t.Run("unusable field name rejected", func(t *testing.T) {
		svc, _ := setupTestService(t)

		err := svc.AddFieldToPart(ctx, contentdef.AddFieldRequest{
			PartName:      "BodyPart",
			FieldName:     " -- ",
			FieldTypeName: "TextField",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, contentdef.ErrInvalidFieldName))
	})
}

func TestRemoveFieldFromPart(t *testing.T) {
	ctx := context.Background()
	svc, notifier := setupTestService(t)

	_, err := svc.AddPart(ctx, "BodyPart")
	require.NoError(t, err)
	err = svc.AddFieldToPart(ctx, contentdef.AddFieldRequest{
		PartName:      "BodyPart",
		FieldName:     "Subtitle",
		FieldTypeName: "TextField",
	})
	require.NoError(t, err)
	notifier.reset()

	err = svc.RemoveFieldFromPart(ctx, "subtitle", "BodyPart")
	require.NoError(t, err)
	assert.Equal(t, []event{{kind: "field_detached", name: "BodyPart", peer: "subtitle"}}, notifier.all())

	err = svc.RemoveFieldFromPart(ctx, "subtitle", "BodyPart")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contentdef.ErrFieldNotFound))

	err = svc.RemoveFieldFromPart(ctx, "subtitle", "NoSuchPart")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contentdef.ErrPartNotFound))
}

func TestAlterFieldDisplayName(t *testing.T) {
	ctx := context.Background()
	svc, notifier := setupTestService(t)

	_, err := svc.AddPart(ctx, "BodyPart")
	require.NoError(t, err)
	err = svc.AddFieldToPart(ctx, contentdef.AddFieldRequest{
		PartName:      "BodyPart",
		FieldName:     "Subtitle",
		FieldTypeName: "TextField",
	})
	require.NoError(t, err)
	notifier.reset()

	// Display-name edits are silent
	err = svc.AlterFieldDisplayName(ctx, "BodyPart", "subtitle", "Sub-heading")
	require.NoError(t, err)
	assert.Empty(t, notifier.all())

	err = svc.AlterFieldDisplayName(ctx, "BodyPart", "missing", "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contentdef.ErrFieldNotFound))

	err = svc.AlterFieldDisplayName(ctx, "NoSuchPart", "subtitle", "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contentdef.ErrPartNotFound))
}
