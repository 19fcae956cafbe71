package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCacheMetrics(reg)

	require.NotNil(t, m)

	m.Hit()
	m.Miss()
	m.FlightStarted()
	m.FlightJoined()
	m.FetchFailed()
	m.Collected()

	timer := m.FetchDuration()
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["feedkit_cache_hits_total"])
	assert.True(t, names["feedkit_cache_misses_total"])
	assert.True(t, names["feedkit_cache_flights_started_total"])
	assert.True(t, names["feedkit_cache_fetch_duration_seconds"])
}

func TestNewStreamMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStreamMetrics(reg)

	require.NotNil(t, m)

	m.HandlerRegistered()
	m.RefreshThrottled("feed")
	m.RefreshDropped("feed")
	m.QueryFailed("feed")
	m.Published("feed")
	m.HandlerCleared()

	timer := m.QueryDuration("feed")
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["feedkit_stream_handlers_active"])
	assert.True(t, names["feedkit_stream_registered_total"])
	assert.True(t, names["feedkit_stream_refresh_throttled_total"])
	assert.True(t, names["feedkit_stream_query_duration_seconds"])
}

func TestNewAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	all := NewAllMetrics(reg)

	require.NotNil(t, all.Cache)
	require.NotNil(t, all.Stream)
}
