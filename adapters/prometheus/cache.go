package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/feedkit-go/core/cache"
	"github.com/codewandler/feedkit-go/core/metrics"
)

// cacheMetrics implements cache.CacheMetrics using Prometheus.
type cacheMetrics struct {
	hits           prometheus.Counter
	misses         prometheus.Counter
	flightsStarted prometheus.Counter
	flightsJoined  prometheus.Counter
	fetchDuration  prometheus.Histogram
	fetchFailures  prometheus.Counter
	collected      prometheus.Counter
}

// NewCacheMetrics creates a new Prometheus implementation of
// cache.CacheMetrics.
func NewCacheMetrics(reg prometheus.Registerer) cache.CacheMetrics {
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedkit_cache_hits_total",
			Help: "Total number of gets served from the store",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedkit_cache_misses_total",
			Help: "Total number of gets that found no fresh entry",
		}),
		flightsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedkit_cache_flights_started_total",
			Help: "Total number of fetches started",
		}),
		flightsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedkit_cache_flights_joined_total",
			Help: "Total number of gets that joined an in-flight fetch",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedkit_cache_fetch_duration_seconds",
			Help:    "Fallback fetch time in seconds",
			Buckets: defaultBuckets,
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedkit_cache_fetch_failures_total",
			Help: "Total number of failed fallback fetches",
		}),
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedkit_cache_collected_total",
			Help: "Total number of stale entries deleted by Collect",
		}),
	}

	reg.MustRegister(
		m.hits,
		m.misses,
		m.flightsStarted,
		m.flightsJoined,
		m.fetchDuration,
		m.fetchFailures,
		m.collected,
	)

	return m
}

func (m *cacheMetrics) Hit()           { m.hits.Inc() }
func (m *cacheMetrics) Miss()          { m.misses.Inc() }
func (m *cacheMetrics) FlightStarted() { m.flightsStarted.Inc() }
func (m *cacheMetrics) FlightJoined()  { m.flightsJoined.Inc() }
func (m *cacheMetrics) FetchFailed()   { m.fetchFailures.Inc() }
func (m *cacheMetrics) Collected()     { m.collected.Inc() }

func (m *cacheMetrics) FetchDuration() metrics.Timer {
	return newTimer(m.fetchDuration)
}
