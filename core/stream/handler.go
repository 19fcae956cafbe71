package stream

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/codewandler/feedkit-go/core/relay"
)

// QueryFunc performs one refresh fetch for a stream. The payload is the
// value passed to ApplyUpdate. Errors are absorbed by the handler: the
// stream emits nothing for that refresh and stays alive.
type QueryFunc[P, V any] func(ctx context.Context, payload P) (V, error)

// Handler owns one registered stream: its refresh queue, throttle, relay
// and teardown signal. Handlers are created by [Registry.Register] and torn
// down by [Registry.Clear]; a torn-down handler is never reused.
type Handler[P, V any] struct {
	key     string
	query   QueryFunc[P, V]
	refresh chan P
	relay   *relay.Relay[V]
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	log     *slog.Logger
	metrics StreamMetrics
}

func newHandler[P, V any](key string, query QueryFunc[P, V], o registerOpts, log *slog.Logger, m StreamMetrics) *Handler[P, V] {
	limit := rate.Inf
	if o.throttleWindow > 0 {
		limit = rate.Every(o.throttleWindow)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler[P, V]{
		key:     key,
		query:   query,
		refresh: make(chan P, o.refreshBuffer),
		relay:   relay.New[V](),
		limiter: rate.NewLimiter(limit, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		log:     log.With(slog.String("stream", key)),
		metrics: m,
	}
	go h.run()
	return h
}

// Key returns the stream key.
func (h *Handler[P, V]) Key() string { return h.key }

// Relay returns the stream's broadcast channel. Subscribers with the
// default deliver policy immediately receive the most recent emission.
func (h *Handler[P, V]) Relay() *relay.Relay[V] { return h.relay }

// Done returns a channel closed once the handler has fully stopped.
func (h *Handler[P, V]) Done() <-chan struct{} { return h.done }

// push enqueues a refresh request without blocking. The throttle is
// evaluated at arrival: a request inside the window is discarded here, not
// queued, so it cannot fire later once a slow query has outlived the
// window. Requests beyond the queue capacity are dropped as well.
func (h *Handler[P, V]) push(payload P) {
	if !h.limiter.Allow() {
		h.metrics.RefreshThrottled(h.key)
		h.log.Debug("refresh throttled")
		return
	}
	select {
	case <-h.ctx.Done():
	case h.refresh <- payload:
	default:
		h.metrics.RefreshDropped(h.key)
		h.log.Debug("refresh queue full, dropping request")
	}
}

// teardown fires the stop signal. The run loop closes the relay, which
// terminates every subscription.
func (h *Handler[P, V]) teardown() {
	h.cancel()
}

// run drains the refresh queue until teardown. Every queued request has
// already passed the throttle in push.
func (h *Handler[P, V]) run() {
	defer close(h.done)
	defer h.relay.Close()

	for {
		select {
		case <-h.ctx.Done():
			return
		case payload := <-h.refresh:
			h.refreshOnce(payload)
		}
	}
}

func (h *Handler[P, V]) refreshOnce(payload P) {
	timer := h.metrics.QueryDuration(h.key)
	v, err := h.query(h.ctx, payload)
	timer.ObserveDuration()

	if err != nil {
		// Absorbed: subscribers see no failure, the stream stays usable.
		h.metrics.QueryFailed(h.key)
		h.log.Debug("refresh query failed", slog.Any("error", err))
		return
	}

	h.relay.Publish(v)
	h.metrics.Published(h.key)
	h.log.Debug("published")
}
