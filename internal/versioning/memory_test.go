package versioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rec := &Version{ID: "v-1", AcrID: "acr-1", Version: 1, CreatedBy: "alice"}
	require.NoError(t, store.Insert(ctx, rec))

	got, err := store.Get(ctx, "acr-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "v-1", got.ID)
	assert.Equal(t, "alice", got.CreatedBy)
}

func TestMemoryStore_InsertConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Insert(ctx, &Version{ID: "v-1", AcrID: "acr-1", Version: 1}))

	err := store.Insert(ctx, &Version{ID: "v-2", AcrID: "acr-1", Version: 1})
	require.ErrorIs(t, err, ErrVersionConflict)

	// The original record survives the losing write.
	got, err := store.Get(ctx, "acr-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "v-1", got.ID)
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "acr-1", 1)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestMemoryStore_ListAscending(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, n := range []int{3, 1, 2} {
		require.NoError(t, store.Insert(ctx, &Version{AcrID: "acr-1", Version: n}))
	}
	require.NoError(t, store.Insert(ctx, &Version{AcrID: "acr-other", Version: 1}))

	versions, err := store.List(ctx, "acr-1")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
	}
}

func TestMemoryStore_Latest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Latest(ctx, "acr-1")
	assert.ErrorIs(t, err, ErrVersionNotFound)

	require.NoError(t, store.Insert(ctx, &Version{AcrID: "acr-1", Version: 1}))
	require.NoError(t, store.Insert(ctx, &Version{AcrID: "acr-1", Version: 2}))

	latest, err := store.Latest(ctx, "acr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
}

func TestMemoryStore_Purge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Insert(ctx, &Version{AcrID: "acr-1", Version: 1}))
	require.NoError(t, store.Insert(ctx, &Version{AcrID: "acr-1", Version: 2}))
	require.NoError(t, store.Insert(ctx, &Version{AcrID: "acr-other", Version: 1}))

	n, err := store.Purge(ctx, "acr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.Latest(ctx, "acr-1")
	assert.ErrorIs(t, err, ErrVersionNotFound)

	// Other documents are untouched.
	_, err = store.Get(ctx, "acr-other", 1)
	assert.NoError(t, err)

	n, err = store.Purge(ctx, "acr-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
