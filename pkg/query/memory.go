package query

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It holds a handful of long-lived entries
// (the session slot and whatever else the application registers), so there
// is no eviction machinery: a plain locked map is enough.
type Memory[V any] struct {
	items  map[string]Entry[V]
	mu     sync.RWMutex
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{items: make(map[string]Entry[V])}
}

// Get retrieves the entry for key.
func (m *Memory[V]) Get(_ context.Context, key string) (Entry[V], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.items[key]
	if !ok {
		return Entry[V]{}, ErrNotFound
	}
	return e, nil
}

// Set replaces the entry for key.
func (m *Memory[V]) Set(_ context.Context, key string, e Entry[V]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.items[key] = e
	return nil
}

// Delete removes the entry for key.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Close marks the store closed. Subsequent writes fail with ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.items = make(map[string]Entry[V])
	return nil
}

var _ Store[any] = (*Memory[any])(nil)
