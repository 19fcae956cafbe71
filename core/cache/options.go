package cache

import (
	"log/slog"
	"time"

	"github.com/codewandler/feedkit-go/ports/store"
)

// DefaultTTL is the freshness window applied when neither the cache nor
// the call override it.
const DefaultTTL = 5 * time.Minute

// Option configures a Cache instance.
type Option[V any] func(*Cache[V])

// WithStore replaces the default in-memory store.
func WithStore[V any](s store.Store[V]) Option[V] {
	return func(c *Cache[V]) {
		c.store = s
	}
}

// WithDefaultTTL sets the instance-wide freshness window.
func WithDefaultTTL[V any](ttl time.Duration) Option[V] {
	return func(c *Cache[V]) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLog attaches a logger. By default the cache is silent.
func WithLog[V any](log *slog.Logger) Option[V] {
	return func(c *Cache[V]) {
		c.log = log.With(slog.String("component", "cache"))
	}
}

// WithMetrics attaches an instrumentation backend.
func WithMetrics[V any](m CacheMetrics) Option[V] {
	return func(c *Cache[V]) {
		c.metrics = m
	}
}

type callOpts struct {
	ttl time.Duration
}

// CallOption overrides per-call behavior of Get and Collect.
type CallOption func(*callOpts)

// WithTTL overrides the freshness window for a single call.
func WithTTL(ttl time.Duration) CallOption {
	return func(o *callOpts) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}
