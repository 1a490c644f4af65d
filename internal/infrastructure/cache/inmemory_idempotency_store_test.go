package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Acquire(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first acquire succeeds", func(t *testing.T) {
		acquired, err := store.Acquire(ctx, "checkout:user-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("second acquire of the same key fails", func(t *testing.T) {
		acquired, err := store.Acquire(ctx, "checkout:user-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, acquired)
	})

	t.Run("different keys do not collide", func(t *testing.T) {
		acquired, err := store.Acquire(ctx, "checkout:user-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("expired key can be re-acquired", func(t *testing.T) {
		acquired, err := store.Acquire(ctx, "checkout:user-3", time.Millisecond)
		require.NoError(t, err)
		require.True(t, acquired)

		time.Sleep(5 * time.Millisecond)

		acquired, err = store.Acquire(ctx, "checkout:user-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	acquired, err := store.Acquire(ctx, "checkout:user-1", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, store.Release(ctx, "checkout:user-1"))

	acquired, err = store.Acquire(ctx, "checkout:user-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
