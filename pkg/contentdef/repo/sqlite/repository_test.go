package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/contentdef/pkg/contentdef"
	"github.com/contentforge/contentdef/pkg/contentdef/repo/sqlite"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTypeDefinitionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	got, err := store.GetTypeDefinition(ctx, "article")
	require.NoError(t, err)
	assert.Nil(t, got)

	def := &contentdef.ContentTypeDefinition{
		Name:        "article",
		DisplayName: "Article",
		Settings:    contentdef.DefaultTypeSettings(),
		Parts:       []contentdef.ContentTypePartDefinition{{PartName: "BodyPart"}},
	}
	require.NoError(t, store.StoreTypeDefinition(ctx, def))

	got, err = store.GetTypeDefinition(ctx, "article")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, def, got)
}

func TestStoreTypeDefinitionUpserts(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	def := &contentdef.ContentTypeDefinition{Name: "article", DisplayName: "Article"}
	require.NoError(t, store.StoreTypeDefinition(ctx, def))

	def.DisplayName = "Updated Article"
	require.NoError(t, store.StoreTypeDefinition(ctx, def))

	got, err := store.GetTypeDefinition(ctx, "article")
	require.NoError(t, err)
	assert.Equal(t, "Updated Article", got.DisplayName)

	defs, err := store.ListTypeDefinitions(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 1)
}

func TestAlterTypeDefinitionCreatesWhenAbsent(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	def, err := store.AlterTypeDefinition(ctx, "article", func(d *contentdef.ContentTypeDefinition) {
		d.DisplayName = "Article"
		d.Name = "renamed" // identity must win
	})
	require.NoError(t, err)
	assert.Equal(t, "article", def.Name)
	assert.Equal(t, "Article", def.DisplayName)

	got, err := store.GetTypeDefinition(ctx, "article")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Article", got.DisplayName)
}

func TestDeleteTypeDefinition(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	err := store.DeleteTypeDefinition(ctx, "missing")
	assert.ErrorIs(t, err, contentdef.ErrTypeNotFound)

	_, err = store.AlterTypeDefinition(ctx, "article", func(d *contentdef.ContentTypeDefinition) {})
	require.NoError(t, err)
	require.NoError(t, store.DeleteTypeDefinition(ctx, "article"))

	got, err := store.GetTypeDefinition(ctx, "article")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadFailureWrapsStoreError(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.GetTypeDefinition(ctx, "article")
	require.Error(t, err)

	var storeErr *contentdef.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "type", storeErr.Kind)
	assert.Equal(t, "article", storeErr.Name)
	assert.Equal(t, "get", storeErr.Op)
}

func TestPartDefinitionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.AlterPartDefinition(ctx, "BodyPart", func(d *contentdef.ContentPartDefinition) {
		d.Settings.Attachable = true
		d.Fields = append(d.Fields, contentdef.ContentPartFieldDefinition{
			Name:          "subtitle",
			DisplayName:   "Subtitle",
			FieldTypeName: "TextField",
		})
	})
	require.NoError(t, err)

	def, err := store.AlterPartDefinition(ctx, "BodyPart", func(d *contentdef.ContentPartDefinition) {
		d.Fields = append(d.Fields, contentdef.ContentPartFieldDefinition{Name: "summary"})
	})
	require.NoError(t, err)
	require.Len(t, def.Fields, 2)
	assert.True(t, def.Settings.Attachable)

	defs, err := store.ListPartDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Len(t, defs[0].Fields, 2)

	require.NoError(t, store.DeletePartDefinition(ctx, "BodyPart"))
	err = store.DeletePartDefinition(ctx, "BodyPart")
	assert.ErrorIs(t, err, contentdef.ErrPartNotFound)
}
