package store

import (
	"context"
	"sync"
)

// MemStore is the default in-process Store implementation.
type MemStore[V any] struct {
	mu   sync.RWMutex
	data map[string]Entry[V]
}

func NewMemStore[V any]() *MemStore[V] {
	return &MemStore[V]{data: map[string]Entry[V]{}}
}

func (m *MemStore[V]) Get(_ context.Context, key string) (entry Entry[V], ok bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok = m.data[key]
	return entry, ok, nil
}

func (m *MemStore[V]) Set(_ context.Context, key string, entry Entry[V]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry
	return nil
}

func (m *MemStore[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MemStore[V]) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, nil
}

// Len returns the number of stored entries.
func (m *MemStore[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

var _ Store[any] = (*MemStore[any])(nil)
