package repository

import (
	"context"
	"testing"
	"time"

	"xubot/models"
	"xubot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresBiasStore_PutGetRemove(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	store := NewPostgresBiasStore(testDB.DB)

	record, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, store.Put(ctx, &models.BiasRecord{
		UserID: 42,
		State:  models.BiasStateUnlucky,
		SetBy:  999,
		SetAt:  time.Now().UTC(),
		Reason: "testing",
	}))

	record, err = store.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.BiasStateUnlucky, record.State)
	assert.Equal(t, int64(999), record.SetBy)
	assert.Equal(t, "testing", record.Reason)

	removed, err := store.Remove(ctx, 42)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, 42)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPostgresBiasStore_IncrementGamesAffected(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	store := NewPostgresBiasStore(testDB.DB)

	require.NoError(t, store.Put(ctx, &models.BiasRecord{
		UserID: 42,
		State:  models.BiasStateUnlucky,
		SetAt:  time.Now().UTC(),
	}))

	require.NoError(t, store.IncrementGamesAffected(ctx, 42))
	require.NoError(t, store.IncrementGamesAffected(ctx, 42))

	record, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), record.GamesAffected)

	// No record is a no-op
	require.NoError(t, store.IncrementGamesAffected(ctx, 7))
}

func TestPostgresBiasStore_All(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	store := NewPostgresBiasStore(testDB.DB)

	now := time.Now().UTC()
	require.NoError(t, store.Put(ctx, &models.BiasRecord{UserID: 1, State: models.BiasStateUnlucky, SetAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Put(ctx, &models.BiasRecord{UserID: 2, State: models.BiasStateUnlucky, SetAt: now}))

	records, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].UserID)
	assert.Equal(t, int64(2), records[1].UserID)
}
