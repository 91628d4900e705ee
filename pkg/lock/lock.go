// Package lock serialises work per key, such as every mutation of one
// order. The memory locker covers a single process; the Redis locker covers
// every API replica sharing a Redis.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrTimeout is returned when a lock cannot be acquired before ctx ends.
var ErrTimeout = errors.New("lock: timed out waiting for lock")

// Locker acquires an exclusive lock on key. The returned func releases it
// and must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type entry struct {
	ch   chan struct{}
	refs int
}

// Memory is an in-process keyed mutex. The zero value is ready to use.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// NewMemory returns an in-process locker.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = map[string]*entry{}
	}
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e, false)
		return nil, ErrTimeout
	}

	var once sync.Once
	return func() { once.Do(func() { m.release(key, e, true) }) }, nil
}

func (m *Memory) release(key string, e *entry, held bool) {
	if held {
		<-e.ch
	}
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
