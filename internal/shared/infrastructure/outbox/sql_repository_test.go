package outbox_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
)

func newSQLiteRepository(t *testing.T) (*outbox.SQLRepository, database.Connection) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "outbox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn)
	require.NoError(t, err)
	return outbox.NewSQLRepository(conn), conn
}

func TestSQLRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLiteRepository(t)

	msg := newMessage("booking.requested")
	msg.Metadata = []byte(`{"correlation_id":"5f1e7c1a-3c1b-4c55-9d61-16b0f0a3a001"}`)
	require.NoError(t, repo.Save(ctx, msg))
	assert.Positive(t, msg.ID)

	due, err := repo.GetUnpublished(ctx, 10, epoch)
	require.NoError(t, err)
	require.Len(t, due, 1)
	got := due[0]
	assert.Equal(t, msg.EventID, got.EventID)
	assert.Equal(t, msg.AggregateID, got.AggregateID)
	assert.Equal(t, msg.CreatedAt, got.CreatedAt)
	assert.JSONEq(t, string(msg.Payload), string(got.Payload))
	assert.Equal(t, "5f1e7c1a-3c1b-4c55-9d61-16b0f0a3a001", got.CorrelationID())
	assert.Nil(t, got.PublishedAt)

	t.Run("failed message waits for its retry time", func(t *testing.T) {
		require.NoError(t, repo.MarkFailed(ctx, msg.ID, "broker down", epoch.Add(time.Minute)))

		due, err := repo.GetUnpublished(ctx, 10, epoch)
		require.NoError(t, err)
		assert.Empty(t, due)

		due, err = repo.GetUnpublished(ctx, 10, epoch.Add(time.Minute))
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, 1, due[0].RetryCount)
		require.NotNil(t, due[0].LastError)
		assert.Equal(t, "broker down", *due[0].LastError)
	})

	t.Run("published message is no longer due and ages out", func(t *testing.T) {
		require.NoError(t, repo.MarkPublished(ctx, msg.ID, epoch.Add(2*time.Minute)))

		due, err := repo.GetUnpublished(ctx, 10, epoch.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, due)

		deleted, err := repo.DeleteOld(ctx, epoch.Add(time.Minute))
		require.NoError(t, err)
		assert.Zero(t, deleted)

		deleted, err = repo.DeleteOld(ctx, epoch.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}

func TestSQLRepository_DeadLetter(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLiteRepository(t)

	msg := newMessage("booking.deleted")
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.MarkDead(ctx, msg.ID, "poison", epoch))

	due, err := repo.GetUnpublished(ctx, 10, epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestSQLRepository_SaveJoinsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	repo, conn := newSQLiteRepository(t)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(txCtx, []*outbox.Message{newMessage("a"), newMessage("b")}))
	require.NoError(t, uow.Rollback(txCtx))

	due, err := repo.GetUnpublished(ctx, 10, epoch)
	require.NoError(t, err)
	assert.Empty(t, due)
}
