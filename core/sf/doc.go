// Package sf provides a generic single-flight mechanism for deduplicating
// concurrent function calls with the same key.
//
// Unlike the cache package, which owns a store and a freshness policy, sf
// is a thin coordination primitive: only the first caller for a key
// executes the function, later concurrent callers block and receive the
// same result. The store adapters use it to collapse concurrent backend
// reads of one key into a single round trip.
//
//	g := sf.New[store.Entry[User]]()
//
//	entry, err, shared := g.Do("user:123", func() (store.Entry[User], error) {
//	    return readBackend(ctx, "user:123")
//	})
package sf
