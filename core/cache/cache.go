package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codewandler/feedkit-go/core/flight"
	"github.com/codewandler/feedkit-go/ports/store"
)

// FetchFunc produces the value for a key when the cache has no fresh entry.
// The function must not retain hidden per-call state across invocations.
// Any timeout on the underlying operation belongs inside the function, via
// the supplied context.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Cache is a keyed single-flight cache.
//
// Get resolves a key by, in order: a fresh store entry, an in-flight fetch
// for the same key, or a new fetch started via the supplied fallback. At
// most one fetch per key is outstanding at any time; all concurrent callers
// share its result. Failed fetches are never cached.
type Cache[V any] struct {
	mu       sync.Mutex
	store    store.Store[V]
	inflight map[string]*flight.Flight[V]
	ttl      time.Duration
	log      *slog.Logger
	metrics  CacheMetrics
	now      func() time.Time
}

// New creates a cache backed by an in-memory store unless WithStore
// overrides it.
func New[V any](opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		inflight: make(map[string]*flight.Flight[V]),
		ttl:      DefaultTTL,
		log:      slog.New(slog.DiscardHandler),
		metrics:  NopCacheMetrics(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = store.NewMemStore[V]()
	}
	return c
}

// Get returns the value for key.
//
// A store entry younger than the TTL is returned as-is. Otherwise, if a
// fetch for key is already in flight, the caller joins it and receives the
// identical result or failure. Otherwise fallback starts a new fetch,
// registered in the in-flight table before the function runs. A nil
// fallback on a miss yields ErrMissingFallback.
//
// Fetch failures are wrapped in *FetchError, shared by every joined caller,
// and never stored; the next Get for the key starts fresh.
func (c *Cache[V]) Get(ctx context.Context, key string, fallback FetchFunc[V], opts ...CallOption) (V, error) {
	o := callOpts{ttl: c.ttl}
	for _, opt := range opts {
		opt(&o)
	}

	var zero V

	// The store lookup, the in-flight check and the registration of a new
	// flight form one critical section. Splitting them would let two
	// callers both observe "no flight" and start two fetches.
	c.mu.Lock()

	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.mu.Unlock()
		return zero, fmt.Errorf("store get %q: %w", key, err)
	}
	if ok && entry.Age(c.now()) < o.ttl {
		c.mu.Unlock()
		c.metrics.Hit()
		return entry.Value, nil
	}
	c.metrics.Miss()

	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		c.metrics.FlightJoined()
		return f.Wait()
	}

	if fallback == nil {
		c.mu.Unlock()
		return zero, fmt.Errorf("get %q: %w", key, ErrMissingFallback)
	}

	f := flight.New(c.wrapFetch(ctx, key, fallback))
	c.inflight[key] = f
	c.mu.Unlock()

	c.metrics.FlightStarted()
	f.Run()
	return f.Wait()
}

// wrapFetch surrounds fallback with the store write and in-flight cleanup.
// The fallback itself runs only once the flight is started, which happens
// strictly after the flight is registered.
func (c *Cache[V]) wrapFetch(ctx context.Context, key string, fallback FetchFunc[V]) func() (V, error) {
	return func() (V, error) {
		timer := c.metrics.FetchDuration()
		v, err := fallback(ctx)
		timer.ObserveDuration()

		if err != nil {
			c.removeFlight(key)
			c.metrics.FetchFailed()
			c.log.Debug("fetch failed", slog.String("key", key), slog.Any("error", err))
			var zero V
			return zero, &FetchError{Key: key, Err: err}
		}

		if serr := c.store.Set(ctx, key, store.Entry[V]{Value: v, StoredAt: c.now()}); serr != nil {
			// The fetched value is still handed to all callers.
			c.log.Warn("store set failed", slog.String("key", key), slog.Any("error", serr))
		}
		c.removeFlight(key)
		return v, nil
	}
}

func (c *Cache[V]) removeFlight(key string) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

// Set unconditionally overwrites the entry for key with the current
// timestamp. In-flight fetches are untouched; only future Get calls
// observe the new value.
func (c *Cache[V]) Set(ctx context.Context, key string, value V) error {
	err := c.store.Set(ctx, key, store.Entry[V]{Value: value, StoredAt: c.now()})
	if err != nil {
		return fmt.Errorf("store set %q: %w", key, err)
	}
	return nil
}

// Has reports whether an entry exists for key, regardless of its age.
func (c *Cache[V]) Has(ctx context.Context, key string) (bool, error) {
	ok, err := c.store.Has(ctx, key)
	if err != nil {
		return false, fmt.Errorf("store has %q: %w", key, err)
	}
	return ok, nil
}

// Collect deletes the entry for key if its age has reached the TTL, and
// reports whether it was deleted. Fresh entries are left untouched. This is
// the only mechanism that shrinks the cache; there is no background sweep.
func (c *Cache[V]) Collect(ctx context.Context, key string, opts ...CallOption) (bool, error) {
	o := callOpts{ttl: c.ttl}
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("store get %q: %w", key, err)
	}
	if !ok || entry.Age(c.now()) < o.ttl {
		return false, nil
	}

	if _, err := c.store.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("store delete %q: %w", key, err)
	}
	c.metrics.Collected()
	c.log.Debug("collected stale entry", slog.String("key", key))
	return true, nil
}
