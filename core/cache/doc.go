// Package cache provides a keyed single-flight cache with age-based
// freshness and explicit collection.
//
// # Single-flight
//
// For any key, at most one fetch is outstanding at a time. Concurrent Get
// calls for the same key join the in-flight fetch and all receive the
// identical value or failure:
//
//	c := cache.New[*User]()
//
//	u, err := c.Get(ctx, "user:1", func(ctx context.Context) (*User, error) {
//	    return api.FetchUser(ctx, 1)
//	})
//
// # Freshness
//
// Entries carry the time they were stored. Get treats an entry younger than
// the TTL (default 5 minutes, override per instance with WithDefaultTTL or
// per call with WithTTL) as fresh. Stale entries are not removed
// automatically; callers evict them explicitly:
//
//	deleted, err := c.Collect(ctx, "user:1")
//
// # Storage
//
// By default entries live in process memory. Any [store.Store]
// implementation can be substituted via WithStore; see the adapters
// directory for Redis, ristretto and NATS JetStream backends.
//
// Failures of a fallback fetch are reported to every joined caller as a
// *FetchError and are never cached.
package cache
