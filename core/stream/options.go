package stream

import (
	"log/slog"
	"time"
)

const (
	// DefaultThrottleWindow is the leading-edge throttle window applied to
	// refresh requests unless Register overrides it.
	DefaultThrottleWindow = time.Second

	// DefaultRefreshBuffer is the capacity of a handler's refresh queue.
	DefaultRefreshBuffer = 16
)

// Option configures a Registry.
type Option func(*config)

type config struct {
	log     *slog.Logger
	metrics StreamMetrics
}

// WithLog attaches a logger. By default the registry is silent.
func WithLog(log *slog.Logger) Option {
	return func(c *config) {
		c.log = log.With(slog.String("component", "stream"))
	}
}

// WithMetrics attaches an instrumentation backend.
func WithMetrics(m StreamMetrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// RegisterOption configures one handler at registration time.
type RegisterOption func(*registerOpts)

type registerOpts struct {
	throttleWindow time.Duration
	refreshBuffer  int
}

// WithThrottleWindow sets the leading-edge throttle window. The first
// refresh request in a window passes; the rest of the window's requests are
// dropped. A zero or negative window disables throttling.
func WithThrottleWindow(d time.Duration) RegisterOption {
	return func(o *registerOpts) {
		o.throttleWindow = d
	}
}

// WithRefreshBuffer sets the capacity of the handler's refresh queue.
func WithRefreshBuffer(n int) RegisterOption {
	return func(o *registerOpts) {
		if n > 0 {
			o.refreshBuffer = n
		}
	}
}
