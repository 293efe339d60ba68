// Package lock provides an in-process table of per-key mutual-exclusion locks
// with bounded waiting.
//
// Each key gets one lock, created on first reference and dropped once no holder
// or waiter references it, so the table only grows with the number of keys in
// active use. Locks are not reentrant: a caller must not request a key it
// already holds.
package lock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amirasaad/accounts/pkg/domain"
)

// Manager maps keys to locks.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	// token is present while the lock is held
	sem  chan struct{}
	refs int
}

// Handle is proof of a held lock. It is returned by Acquire and consumed by Release.
type Handle struct {
	key      string
	entry    *entry
	released atomic.Bool
}

// Key returns the key the handle locks.
func (h *Handle) Key() string { return h.key }

// NewManager creates an empty lock table.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

// Acquire blocks until the lock for key is held, wait elapses or ctx is done.
// On timeout it fails with a Locked error naming the key. A non-positive wait
// only succeeds if the lock is free right now.
func (m *Manager) Acquire(ctx context.Context, key string, wait time.Duration) (*Handle, error) {
	e := m.ref(key)

	select {
	case e.sem <- struct{}{}:
		return &Handle{key: key, entry: e}, nil
	default:
	}
	if wait <= 0 {
		m.unref(key, e)
		return nil, domain.Locked(key)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return &Handle{key: key, entry: e}, nil
	case <-timer.C:
		m.unref(key, e)
		return nil, domain.Locked(key)
	case <-ctx.Done():
		m.unref(key, e)
		return nil, fmt.Errorf("acquire lock for account %s: %w", key, ctx.Err())
	}
}

// Release unlocks the handle's key. Releasing the same handle twice is a no-op.
func (m *Manager) Release(h *Handle) {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	<-h.entry.sem
	m.unref(h.key, h.entry)
}

// Held reports whether the lock for key is currently held.
func (m *Manager) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return ok && len(e.sem) == 1
}

// Len returns the number of keys with a holder or waiter.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) ref(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *Manager) unref(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}
