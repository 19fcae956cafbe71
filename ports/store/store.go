package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrClosed = errors.New("store closed")
)

// Entry is a cached value together with the time it was written.
// Freshness decisions (TTL, collection) are made by the owner of the
// store, not by the store itself.
type Entry[V any] struct {
	Value    V         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Age returns how long ago the entry was written, relative to now.
func (e Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Store abstracts keyed storage of cache entries. Implementations must be
// safe for concurrent use. A miss is reported via the bool, not an error.
type Store[V any] interface {
	// Get retrieves the entry for key. The bool reports whether it exists.
	Get(ctx context.Context, key string) (Entry[V], bool, error)

	// Set stores entry under key, replacing any previous entry.
	Set(ctx context.Context, key string, entry Entry[V]) error

	// Has reports whether an entry exists for key, regardless of age.
	Has(ctx context.Context, key string) (bool, error)

	// Delete removes the entry for key and reports whether one existed.
	Delete(ctx context.Context, key string) (bool, error)
}
