package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codewandler/feedkit-go/core/relay"
)

// Registry manages named live feeds. Each key has at most one handler,
// created by Register and destroyed by Clear or ClearAll. Consumers
// subscribe to a stream's relay for values and call ApplyUpdate to request
// refreshes.
type Registry[P, V any] struct {
	mu       sync.Mutex
	handlers map[string]*Handler[P, V]
	log      *slog.Logger
	metrics  StreamMetrics
}

func New[P, V any](opts ...Option) *Registry[P, V] {
	cfg := &config{
		log:     slog.New(slog.DiscardHandler),
		metrics: NopStreamMetrics(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Registry[P, V]{
		handlers: make(map[string]*Handler[P, V]),
		log:      cfg.log,
		metrics:  cfg.metrics,
	}
}

// Register installs a handler for key and returns its relay. Registering a
// key that already has a live handler fails with ErrDuplicateKey and leaves
// the existing handler untouched.
func (r *Registry[P, V]) Register(key string, query QueryFunc[P, V], opts ...RegisterOption) (*relay.Relay[V], error) {
	o := registerOpts{
		throttleWindow: DefaultThrottleWindow,
		refreshBuffer:  DefaultRefreshBuffer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[key]; ok {
		return nil, fmt.Errorf("register %q: %w", key, ErrDuplicateKey)
	}

	h := newHandler(key, query, o, r.log, r.metrics)
	r.handlers[key] = h
	r.metrics.HandlerRegistered()
	r.log.Debug("stream registered", slog.String("key", key), slog.Duration("throttle", o.throttleWindow))
	return h.relay, nil
}

// Handler returns the live handler for key, if any.
func (r *Registry[P, V]) Handler(key string) (*Handler[P, V], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[key]
	return h, ok
}

// Stream returns the relay for key, if a handler is registered.
func (r *Registry[P, V]) Stream(key string) (*relay.Relay[V], bool) {
	h, ok := r.Handler(key)
	if !ok {
		return nil, false
	}
	return h.relay, true
}

// ApplyUpdate requests a refresh of the stream for key, carrying payload to
// the query function. Unknown keys are a no-op. The request is subject to
// the handler's throttle window.
func (r *Registry[P, V]) ApplyUpdate(key string, payload P) {
	h, ok := r.Handler(key)
	if !ok {
		return
	}
	h.push(payload)
}

// ApplyUpdateWait requests a refresh and reports whether the stream emitted
// a value before waitFor elapsed. Only emissions after the request count;
// the replayed pre-update value can never be mistaken for confirmation.
// Unknown keys return ErrUnknownStream. The timer bounds observation only:
// the underlying query keeps running either way.
func (r *Registry[P, V]) ApplyUpdateWait(ctx context.Context, key string, payload P, waitFor time.Duration) (bool, error) {
	h, ok := r.Handler(key)
	if !ok {
		return false, fmt.Errorf("apply update %q: %w", key, ErrUnknownStream)
	}

	sub := h.relay.Subscribe(relay.WithDeliverPolicy(relay.DeliverNew))
	defer sub.Cancel()

	h.push(payload)

	timer := time.NewTimer(waitFor)
	defer timer.Stop()

	select {
	case _, ok := <-sub.Chan():
		// A closed channel means the stream was torn down while waiting.
		return ok, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Clear tears down the handler for key and removes it. Unknown keys are a
// no-op. All subscriptions of the stream are terminated.
func (r *Registry[P, V]) Clear(key string) {
	r.mu.Lock()
	h, ok := r.handlers[key]
	if ok {
		delete(r.handlers, key)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	h.teardown()
	r.metrics.HandlerCleared()
	r.log.Debug("stream cleared", slog.String("key", key))
}

// ClearAll tears down and removes every handler.
func (r *Registry[P, V]) ClearAll() {
	r.mu.Lock()
	handlers := r.handlers
	r.handlers = make(map[string]*Handler[P, V])
	r.mu.Unlock()

	for key, h := range handlers {
		h.teardown()
		r.metrics.HandlerCleared()
		r.log.Debug("stream cleared", slog.String("key", key))
	}
}

// Len returns the number of live handlers.
func (r *Registry[P, V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
