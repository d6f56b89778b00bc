package lock

import (
	"context"
	"sync"
	"time"
)

// KeyedMutex is an in-process Locker. Entries are dropped once no caller
// holds or waits for them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyEntry
}

type keyEntry struct {
	sem  chan struct{}
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyEntry)}
}

// Acquire locks key, waiting at most wait. A non-positive wait fails at once
// when the key is held.
func (m *KeyedMutex) Acquire(ctx context.Context, key string, wait time.Duration) (Release, error) {
	e := m.ref(key)

	select {
	case e.sem <- struct{}{}:
		return m.releaser(key, e), nil
	default:
	}
	if wait <= 0 {
		m.unref(key, e)
		return nil, ErrTimeout
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return m.releaser(key, e), nil
	case <-timer.C:
		m.unref(key, e)
		return nil, ErrTimeout
	case <-ctx.Done():
		m.unref(key, e)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) releaser(key string, e *keyEntry) Release {
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-e.sem
			m.unref(key, e)
		})
		return nil
	}
}

func (m *KeyedMutex) ref(key string) *keyEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &keyEntry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *KeyedMutex) unref(key string, e *keyEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

// Len returns the number of keys currently held or awaited.
func (m *KeyedMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

var _ Locker = (*KeyedMutex)(nil)
