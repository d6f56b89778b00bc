// Package lock serialises work on a key, within one process or across
// processes through Redis.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a lock could not be acquired within the wait.
var ErrTimeout = errors.New("lock wait timed out")

// Release gives a held lock back. It is safe to call once.
type Release func(ctx context.Context) error

// Locker acquires exclusive locks by key, waiting at most wait.
type Locker interface {
	Acquire(ctx context.Context, key string, wait time.Duration) (Release, error)
}
