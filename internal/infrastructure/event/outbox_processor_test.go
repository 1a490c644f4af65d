package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/domain/shared"
)

func newProcessorFixture(t *testing.T) (*OutboxProcessor, *GormOutboxRepository, *recordingHandler) {
	t.Helper()

	repo := NewGormOutboxRepository(setupOutboxTestDB(t))

	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})

	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"TestEvent"}}
	bus.Subscribe(handler)

	processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	return processor, repo, handler
}

func TestOutboxProcessor_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches pending entries and marks them sent", func(t *testing.T) {
		processor, repo, handler := newProcessorFixture(t)
		newStoredEntry(t, repo)

		processor.processBatch(ctx)

		assert.Equal(t, 1, handler.count())

		remaining, err := repo.FindDispatchable(ctx, time.Now(), 10)
		require.NoError(t, err)
		assert.Empty(t, remaining, "sent entry must not be dispatched again")
	})

	t.Run("unknown event type fails the entry and schedules a retry", func(t *testing.T) {
		processor, repo, handler := newProcessorFixture(t)

		entries, err := shared.NewOutboxEntries(newTestEvent("UnregisteredEvent"))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, entries...))

		processor.processBatch(ctx)

		assert.Equal(t, 0, handler.count())

		// Entry is failed with backoff, so it is not immediately dispatchable
		remaining, err := repo.FindDispatchable(ctx, time.Now(), 10)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		// But it becomes dispatchable once the backoff elapses
		later, err := repo.FindDispatchable(ctx, time.Now().Add(time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, later, 1)
		assert.Equal(t, shared.OutboxStatusFailed, later[0].Status)
		assert.Equal(t, 1, later[0].RetryCount)
		assert.Contains(t, later[0].LastError, "unknown event type")
	})

	t.Run("entry moves to dead letter after exhausting retries", func(t *testing.T) {
		processor, repo, _ := newProcessorFixture(t)

		entries, err := shared.NewOutboxEntries(newTestEvent("UnregisteredEvent"))
		require.NoError(t, err)
		entry := entries[0]
		entry.RetryCount = entry.MaxRetries - 1
		require.NoError(t, repo.Save(ctx, entry))

		processor.processBatch(ctx)

		// Dead entries never come back, even far in the future
		later, err := repo.FindDispatchable(ctx, time.Now().Add(24*time.Hour), 10)
		require.NoError(t, err)
		assert.Empty(t, later)
	})
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	processor, repo, handler := newProcessorFixture(t)
	newStoredEntry(t, repo)

	processor.config.PollInterval = 10 * time.Millisecond
	processor.config.CleanupEnabled = false

	require.NoError(t, processor.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return handler.count() == 1
	}, 2*time.Second, 20*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, processor.Stop(stopCtx))
}
