package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/feedkit-go/core/metrics"
	"github.com/codewandler/feedkit-go/core/stream"
)

// streamMetrics implements stream.StreamMetrics using Prometheus.
type streamMetrics struct {
	handlersActive prometheus.Gauge
	registered     prometheus.Counter
	cleared        prometheus.Counter
	throttled      *prometheus.CounterVec
	dropped        *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	queryFailures  *prometheus.CounterVec
	published      *prometheus.CounterVec
}

// NewStreamMetrics creates a new Prometheus implementation of
// stream.StreamMetrics.
func NewStreamMetrics(reg prometheus.Registerer) stream.StreamMetrics {
	m := &streamMetrics{
		handlersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedkit_stream_handlers_active",
			Help: "Number of live stream handlers",
		}),
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedkit_stream_registered_total",
			Help: "Total number of stream registrations",
		}),
		cleared: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedkit_stream_cleared_total",
			Help: "Total number of stream teardowns",
		}),
		throttled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedkit_stream_refresh_throttled_total",
			Help: "Total number of refresh requests dropped by the throttle",
		}, []string{"stream"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedkit_stream_refresh_dropped_total",
			Help: "Total number of refresh requests dropped by a full queue",
		}, []string{"stream"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedkit_stream_query_duration_seconds",
			Help:    "Refresh query time in seconds",
			Buckets: defaultBuckets,
		}, []string{"stream"}),
		queryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedkit_stream_query_failures_total",
			Help: "Total number of failed refresh queries",
		}, []string{"stream"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedkit_stream_published_total",
			Help: "Total number of values broadcast to subscribers",
		}, []string{"stream"}),
	}

	reg.MustRegister(
		m.handlersActive,
		m.registered,
		m.cleared,
		m.throttled,
		m.dropped,
		m.queryDuration,
		m.queryFailures,
		m.published,
	)

	return m
}

func (m *streamMetrics) HandlerRegistered() {
	m.registered.Inc()
	m.handlersActive.Inc()
}

func (m *streamMetrics) HandlerCleared() {
	m.cleared.Inc()
	m.handlersActive.Dec()
}

func (m *streamMetrics) RefreshThrottled(stream string) {
	m.throttled.WithLabelValues(stream).Inc()
}

func (m *streamMetrics) RefreshDropped(stream string) {
	m.dropped.WithLabelValues(stream).Inc()
}

func (m *streamMetrics) QueryDuration(stream string) metrics.Timer {
	return newTimer(m.queryDuration.WithLabelValues(stream))
}

func (m *streamMetrics) QueryFailed(stream string) {
	m.queryFailures.WithLabelValues(stream).Inc()
}

func (m *streamMetrics) Published(stream string) {
	m.published.WithLabelValues(stream).Inc()
}
