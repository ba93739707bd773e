// Package storagetest holds behaviour checks every storage backend must pass.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/storage"
)

// Run exercises s against the storage contract. newStore must return an
// empty store each call.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Run("APIKeys", func(t *testing.T) { testAPIKeys(t, newStore(t)) })
	t.Run("APIKeyDuplicateHash", func(t *testing.T) { testAPIKeyDuplicateHash(t, newStore(t)) })
	t.Run("SaveRecords", func(t *testing.T) { testSaveRecords(t, newStore(t)) })
}

func testAPIKeys(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	count, err := s.CountAPIKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	key := &domain.APIKey{
		ID:        "key-1",
		Name:      "ops",
		Author:    "ops@example.com",
		KeyHash:   "hash-1",
		KeyPrefix: "abcd1234",
		CreatedAt: created,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))
	assert.True(t, errors.Is(s.CreateAPIKey(ctx, key), domain.ErrAlreadyExists))

	got, err := s.GetAPIKeyByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "key-1", got.ID)
	assert.Equal(t, "ops@example.com", got.Author)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Nil(t, got.LastUsedAt)

	_, err = s.GetAPIKeyByHash(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, s.UpdateAPIKeyLastUsed(ctx, "key-1"))
	got, err = s.GetAPIKeyByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.NotNil(t, got.LastUsedAt)

	require.NoError(t, s.CreateAPIKey(ctx, &domain.APIKey{
		ID: "key-2", Name: "ci", KeyHash: "hash-2", KeyPrefix: "efgh5678", CreatedAt: created.Add(time.Hour),
	}))
	keys, err := s.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "key-2", keys[0].ID)

	require.NoError(t, s.DeleteAPIKey(ctx, "key-1"))
	assert.True(t, errors.Is(s.DeleteAPIKey(ctx, "key-1"), domain.ErrNotFound))

	count, err = s.CountAPIKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func testAPIKeyDuplicateHash(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateAPIKey(ctx, &domain.APIKey{ID: "a", Name: "a", KeyHash: "same", KeyPrefix: "a", CreatedAt: now}))
	err := s.CreateAPIKey(ctx, &domain.APIKey{ID: "b", Name: "b", KeyHash: "same", KeyPrefix: "b", CreatedAt: now})
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
}

func testSaveRecords(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	records, err := s.ListSaveRecords(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateSaveRecord(ctx, &domain.SaveRecord{
			ID:         fmt.Sprintf("rec-%d", i),
			WindowName: fmt.Sprintf("window %d", i),
			ObjectID:   fmt.Sprintf("obj-%d", i),
			Status:     domain.SaveStatusSuccess,
			Author:     "ops@example.com",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.CreateSaveRecord(ctx, &domain.SaveRecord{
		ID:         "rec-failed",
		WindowName: "broken",
		TagKey:     "Maintenance — broken",
		TagValue:   "2030-01-01 00:00:00 UTC",
		AutoTagID:  "tag-1",
		Status:     domain.SaveStatusFailed,
		Error:      "boom",
		CreatedAt:  base.Add(time.Hour),
	}))
	assert.True(t, errors.Is(s.CreateSaveRecord(ctx, &domain.SaveRecord{
		ID: "rec-0", WindowName: "dup", Status: domain.SaveStatusSuccess, CreatedAt: base,
	}), domain.ErrAlreadyExists))

	count, err := s.CountSaveRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	got, err := s.GetSaveRecord(ctx, "rec-failed")
	require.NoError(t, err)
	assert.Equal(t, domain.SaveStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
	assert.Equal(t, "tag-1", got.AutoTagID)
	assert.Equal(t, "Maintenance — broken", got.TagKey)

	_, err = s.GetSaveRecord(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	page, err := s.ListSaveRecords(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "rec-failed", page[0].ID)
	assert.Equal(t, "rec-4", page[1].ID)

	page, err = s.ListSaveRecords(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "rec-1", page[0].ID)
	assert.Equal(t, "rec-0", page[1].ID)

	page, err = s.ListSaveRecords(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}
