package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "bookwell:lock:"
	defaultRedisTTL    = 10 * time.Second
	defaultRetryEvery  = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was re-acquired by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a Locker shared by every process using the same Redis.
// Locks expire after the TTL if the holder dies.
type RedisLock struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	retryEvery time.Duration
}

// RedisOption configures a RedisLock.
type RedisOption func(*RedisLock)

// WithTTL sets how long a lock survives without release.
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLock) { l.ttl = ttl }
}

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) RedisOption {
	return func(l *RedisLock) { l.prefix = prefix }
}

// NewRedisLock creates a Redis-backed Locker.
func NewRedisLock(client redis.UniversalClient, opts ...RedisOption) *RedisLock {
	l := &RedisLock{
		client:     client,
		prefix:     defaultRedisPrefix,
		ttl:        defaultRedisTTL,
		retryEvery: defaultRetryEvery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewRedisClient parses url and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Acquire polls SET NX until it wins or wait elapses.
func (l *RedisLock) Acquire(ctx context.Context, key string, wait time.Duration) (Release, error) {
	redisKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrTimeout
		}
		sleep := min(l.retryEvery, remaining)

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *RedisLock) releaser(redisKey, token string) Release {
	released := false
	return func(ctx context.Context) error {
		if released {
			return nil
		}
		released = true
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("release %s: %w", redisKey, err)
		}
		return nil
	}
}

// Ping checks the Redis connection.
func (l *RedisLock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

var _ Locker = (*RedisLock)(nil)
