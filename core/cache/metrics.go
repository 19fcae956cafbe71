package cache

import "github.com/codewandler/feedkit-go/core/metrics"

// CacheMetrics defines the instrumentation hooks of a cache instance.
// Implementations must be safe for concurrent use.
type CacheMetrics interface {
	// Hit is recorded when Get is served from the store.
	Hit()
	// Miss is recorded when Get finds no fresh entry.
	Miss()
	// FlightStarted is recorded when Get starts a new fetch.
	FlightStarted()
	// FlightJoined is recorded when Get joins an in-flight fetch.
	FlightJoined()
	// FetchDuration times a fallback fetch, successful or not.
	FetchDuration() metrics.Timer
	// FetchFailed is recorded when a fallback fetch returns an error.
	FetchFailed()
	// Collected is recorded when Collect deletes a stale entry.
	Collected()
}

// nopCacheMetrics is a no-op implementation of CacheMetrics.
type nopCacheMetrics struct{}

func (nopCacheMetrics) Hit()                         {}
func (nopCacheMetrics) Miss()                        {}
func (nopCacheMetrics) FlightStarted()               {}
func (nopCacheMetrics) FlightJoined()                {}
func (nopCacheMetrics) FetchDuration() metrics.Timer { return metrics.NopTimer() }
func (nopCacheMetrics) FetchFailed()                 {}
func (nopCacheMetrics) Collected()                   {}

// NopCacheMetrics returns a no-op CacheMetrics.
func NopCacheMetrics() CacheMetrics { return nopCacheMetrics{} }
