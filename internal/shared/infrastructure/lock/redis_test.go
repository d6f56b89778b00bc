package lock_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/lock"
)

func newRedisLock(t *testing.T, opts ...lock.RedisOption) *lock.RedisLock {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := lock.NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts = append([]lock.RedisOption{lock.WithPrefix("bookwell:test:" + uuid.NewString() + ":")}, opts...)
	return lock.NewRedisLock(client, opts...)
}

func TestRedisLock_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	l := newRedisLock(t)
	require.NoError(t, l.Ping(ctx))

	release, err := l.Acquire(ctx, "slot", time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "slot", 50*time.Millisecond)
	assert.ErrorIs(t, err, lock.ErrTimeout)

	require.NoError(t, release(ctx))

	again, err := l.Acquire(ctx, "slot", 0)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestRedisLock_ExpiredLockIsNotStolenBack(t *testing.T) {
	ctx := context.Background()
	l := newRedisLock(t, lock.WithTTL(50*time.Millisecond))

	stale, err := l.Acquire(ctx, "slot", 0)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	current, err := l.Acquire(ctx, "slot", 0)
	require.NoError(t, err)

	// The stale holder's release must not free the new holder's lock.
	require.NoError(t, stale(ctx))
	_, err = l.Acquire(ctx, "slot", 0)
	assert.ErrorIs(t, err, lock.ErrTimeout)

	require.NoError(t, current(ctx))
}
