package outbox

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreBatchIsOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Enqueue(ctx, Comment{TaskID: "card-2", Text: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Enqueue(ctx, Comment{TaskID: "card-1", Text: "first", CreatedAt: base}))
	require.NoError(t, store.Enqueue(ctx, Comment{TaskID: "card-3", Text: "third", CreatedAt: base.Add(2 * time.Minute)}))

	batch, err := store.GetBatch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "first", batch[0].Text)
	assert.Equal(t, "second", batch[1].Text)
	assert.NotEmpty(t, batch[0].ID)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestStoreRemoveAndRequeue(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Enqueue(ctx, Comment{TaskID: "card-1", Text: "moved"}))
	batch, err := store.GetBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	require.NoError(t, store.Requeue(ctx, batch[0], errors.New("board down")))
	batch, err = store.GetBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 1, batch[0].Attempts)
	assert.Equal(t, "board down", batch[0].LastError)

	require.NoError(t, store.Remove(ctx, batch[0]))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	now := time.Now()

	require.NoError(t, store.Enqueue(ctx, Comment{TaskID: "old", Text: "old", CreatedAt: now.Add(-96 * time.Hour)}))
	require.NoError(t, store.Enqueue(ctx, Comment{TaskID: "older", Text: "older", CreatedAt: now.Add(-100 * time.Hour)}))
	require.NoError(t, store.Enqueue(ctx, Comment{TaskID: "fresh", Text: "fresh", CreatedAt: now}))

	removed, err := store.Cleanup(ctx, now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	batch, err := store.GetBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "fresh", batch[0].TaskID)
}

func TestClosedStoreFails(t *testing.T) {
	var store *Store
	_, err := store.Size()
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
