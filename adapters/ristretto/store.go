// Package ristretto provides an in-process implementation of the store port
// backed by ristretto. Unlike the default MemStore it bounds its size:
// under memory pressure ristretto may evict entries, which the cache simply
// observes as misses.
package ristretto

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/codewandler/feedkit-go/ports/store"
)

type Config struct {
	// MaxEntries bounds the number of entries (each entry has a cost of 1).
	MaxEntries int64
}

// Store is a ristretto-backed store.Store.
type Store[V any] struct {
	rc *ristretto.Cache[string, store.Entry[V]]
}

func New[V any](cfg Config) (*Store[V], error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1 << 16
	}
	rc, err := ristretto.NewCache(&ristretto.Config[string, store.Entry[V]]{
		NumCounters: cfg.MaxEntries * 10,
		MaxCost:     cfg.MaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &Store[V]{rc: rc}, nil
}

func (s *Store[V]) Get(_ context.Context, key string) (store.Entry[V], bool, error) {
	entry, ok := s.rc.Get(key)
	return entry, ok, nil
}

func (s *Store[V]) Set(_ context.Context, key string, entry store.Entry[V]) error {
	s.rc.Set(key, entry, 1)
	// Wait for the entry to pass through ristretto's buffers so a
	// subsequent Get observes it.
	s.rc.Wait()
	return nil
}

func (s *Store[V]) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.rc.Get(key)
	return ok, nil
}

func (s *Store[V]) Delete(_ context.Context, key string) (bool, error) {
	_, ok := s.rc.Get(key)
	s.rc.Del(key)
	s.rc.Wait()
	return ok, nil
}

// Close releases the underlying cache.
func (s *Store[V]) Close() {
	s.rc.Close()
}

var _ store.Store[any] = (*Store[any])(nil)
