package seenstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore(zap.NewNop(), time.Hour, time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMemoryStoreAddAndContains(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen, err := store.Contains(ctx, "101")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "101", time.Now()))

	seen, err = store.Contains(ctx, "101")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.Contains(ctx, "102")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryStoreAddIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "7", time.Now()))
	require.NoError(t, store.Add(ctx, "7", time.Now()))

	seen, err := store.Contains(ctx, "7")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemoryStorePrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Add(ctx, "old", now.Add(-2*time.Hour)))
	require.NoError(t, store.Add(ctx, "fresh", now))

	require.NoError(t, store.Prune(ctx, now.Add(-time.Hour)))

	seen, err := store.Contains(ctx, "old")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = store.Contains(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemoryStoreCloseTwice(t *testing.T) {
	store := NewMemoryStore(zap.NewNop(), time.Hour, time.Hour)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
