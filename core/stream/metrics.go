package stream

import "github.com/codewandler/feedkit-go/core/metrics"

// StreamMetrics defines the instrumentation hooks of a stream registry.
// Implementations must be safe for concurrent use.
type StreamMetrics interface {
	// HandlerRegistered is recorded when Register installs a handler.
	HandlerRegistered()
	// HandlerCleared is recorded when a handler is torn down.
	HandlerCleared()
	// RefreshThrottled is recorded when a refresh request is dropped by
	// the throttle window.
	RefreshThrottled(stream string)
	// RefreshDropped is recorded when a refresh request is dropped
	// because the handler's queue is full.
	RefreshDropped(stream string)
	// QueryDuration times one queryOnce invocation.
	QueryDuration(stream string) metrics.Timer
	// QueryFailed is recorded when queryOnce returns an error.
	QueryFailed(stream string)
	// Published is recorded when a value is broadcast to subscribers.
	Published(stream string)
}

// nopStreamMetrics is a no-op implementation of StreamMetrics.
type nopStreamMetrics struct{}

func (nopStreamMetrics) HandlerRegistered()                 {}
func (nopStreamMetrics) HandlerCleared()                    {}
func (nopStreamMetrics) RefreshThrottled(string)            {}
func (nopStreamMetrics) RefreshDropped(string)              {}
func (nopStreamMetrics) QueryDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopStreamMetrics) QueryFailed(string)                 {}
func (nopStreamMetrics) Published(string)                   {}

// NopStreamMetrics returns a no-op StreamMetrics.
func NopStreamMetrics() StreamMetrics { return nopStreamMetrics{} }
