package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phoneshop/backend/internal/domain/shared"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&shared.OutboxEntry{})
	require.NoError(t, err)

	return db
}

func newStoredEntry(t *testing.T, repo *GormOutboxRepository) *shared.OutboxEntry {
	t.Helper()
	entries, err := shared.NewOutboxEntries(newTestEvent("TestEvent"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), entries...))
	return entries[0]
}

func TestGormOutboxRepository_Save(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxTestDB(t))
	ctx := context.Background()

	t.Run("persists entries", func(t *testing.T) {
		entries, err := shared.NewOutboxEntries(newTestEvent("TestEvent"), newTestEvent("OtherEvent"))
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, entries...))

		found, err := repo.FindDispatchable(ctx, time.Now(), 10)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("no entries is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.Save(ctx))
	})
}

func TestGormOutboxRepository_FindDispatchable(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxTestDB(t))
	ctx := context.Background()

	pending := newStoredEntry(t, repo)

	// A sent entry must never be picked up again
	sent := newStoredEntry(t, repo)
	require.NoError(t, sent.MarkProcessing())
	sent.MarkSent()
	require.NoError(t, repo.Update(ctx, sent))

	// A failed entry is dispatchable once its retry time has passed
	retryable := newStoredEntry(t, repo)
	require.NoError(t, retryable.MarkProcessing())
	retryable.MarkFailed("temporary outage")
	past := time.Now().Add(-time.Minute)
	retryable.NextRetryAt = &past
	require.NoError(t, repo.Update(ctx, retryable))

	// A failed entry whose backoff has not elapsed stays out of the batch
	notYet := newStoredEntry(t, repo)
	require.NoError(t, notYet.MarkProcessing())
	notYet.MarkFailed("temporary outage")
	future := time.Now().Add(time.Hour)
	notYet.NextRetryAt = &future
	require.NoError(t, repo.Update(ctx, notYet))

	found, err := repo.FindDispatchable(ctx, time.Now(), 10)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, e := range found {
		ids[e.ID.String()] = true
	}
	assert.Len(t, found, 2)
	assert.True(t, ids[pending.ID.String()])
	assert.True(t, ids[retryable.ID.String()])

	t.Run("respects limit", func(t *testing.T) {
		found, err := repo.FindDispatchable(ctx, time.Now(), 1)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}

func TestGormOutboxRepository_DeleteOlderThan(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxTestDB(t))
	ctx := context.Background()

	old := newStoredEntry(t, repo)
	require.NoError(t, old.MarkProcessing())
	old.MarkSent()
	processedAt := time.Now().Add(-48 * time.Hour)
	old.ProcessedAt = &processedAt
	require.NoError(t, repo.Update(ctx, old))

	recent := newStoredEntry(t, repo)
	require.NoError(t, recent.MarkProcessing())
	recent.MarkSent()
	require.NoError(t, repo.Update(ctx, recent))

	stillPending := newStoredEntry(t, repo)

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// The pending entry survives regardless of age
	found, err := repo.FindDispatchable(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stillPending.ID, found[0].ID)
}
