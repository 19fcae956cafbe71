package sf

import "golang.org/x/sync/singleflight"

// Group deduplicates concurrent function calls with the same key. Only the
// first caller executes the function; others wait and receive the same
// result. The zero value is ready to use.
type Group[T any] struct {
	group singleflight.Group
}

// New creates a new Group for type T.
func New[T any]() *Group[T] {
	return &Group[T]{}
}

// Do executes fn for the given key, deduplicating concurrent calls. If a
// call is already in-flight for the key, Do blocks until it completes and
// returns the same result. The returned bool reports whether the result was
// shared with other callers.
func (g *Group[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	v, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err, shared
	}
	return v.(T), nil, shared
}
