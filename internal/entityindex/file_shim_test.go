package entityindex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

func TestFileShim_MissingFileIsEmpty(t *testing.T) {
	shim := NewFileShim(filepath.Join(t.TempDir(), "index.json"))

	page, err := shim.QueryEntities(context.Background(), EntityQuery{Selector: "type(HOST)"})
	require.NoError(t, err)
	assert.Empty(t, page.Entities)
	assert.Empty(t, page.NextPageKey)
}

func TestFileShim_PaginatesEntities(t *testing.T) {
	shim := NewMemoryShim(Fixture{Entities: map[string][]EntityRecord{
		"type(HOST)": {{EntityID: "HOST-1"}, {EntityID: "HOST-2"}, {EntityID: "HOST-3"}},
	}})
	ctx := context.Background()

	first, err := shim.QueryEntities(ctx, EntityQuery{Selector: "type(HOST)", PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, first.Entities, 2)
	assert.Equal(t, "2", first.NextPageKey)

	second, err := shim.QueryEntities(ctx, EntityQuery{Selector: "type(HOST)", PageSize: 2, NextPageKey: first.NextPageKey})
	require.NoError(t, err)
	assert.Equal(t, []EntityRecord{{EntityID: "HOST-3"}}, second.Entities)
	assert.Empty(t, second.NextPageKey)
}

func TestFileShim_InvalidPageKey(t *testing.T) {
	shim := NewMemoryShim(Fixture{})

	_, err := shim.QueryEntities(context.Background(), EntityQuery{Selector: "x", NextPageKey: "nope"})

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestFileShim_CreateAndDeletePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	ctx := context.Background()

	shim := NewFileShim(path)
	id, err := shim.CreateSettingsObject(ctx, SettingsObjectCreate{
		SchemaID: domain.SchemaAutoTagging,
		Scope:    domain.ScopeEnvironment,
		Value:    map[string]string{"name": "Maintenance — db"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = os.Stat(path)
	require.NoError(t, err)

	// A fresh shim sees the persisted object.
	reopened := NewFileShim(path)
	objects, err := ListAllSettings(ctx, reopened, SettingsQuery{SchemaID: domain.SchemaAutoTagging})
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, id, objects[0].ObjectID)

	require.NoError(t, reopened.DeleteSettingsObject(ctx, id))
	assert.True(t, errors.Is(reopened.DeleteSettingsObject(ctx, id), domain.ErrNotFound))

	objects, err = ListAllSettings(ctx, NewFileShim(path), SettingsQuery{SchemaID: domain.SchemaAutoTagging})
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestFileShim_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileShim(path).QueryEntityTypes(context.Background(), 0)
	assert.Error(t, err)
}

func TestListAllSettings_FollowsPages(t *testing.T) {
	objects := []SettingsObject{{ObjectID: "a"}, {ObjectID: "b"}, {ObjectID: "c"}}
	shim := NewMemoryShim(Fixture{Settings: map[string][]SettingsObject{"schema": objects}})

	got, err := ListAllSettings(context.Background(), shim, SettingsQuery{SchemaID: "schema", PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, objects, got)
}
