// Package relay provides an in-process broadcast hub with replay of the
// most recent value.
//
// A [Relay] fans every published value out to all current subscribers, in
// subscription order. It remembers the last published value; a subscriber
// joining afterwards with [DeliverLast] immediately receives that value,
// then live emissions. Subscriber channels hold a single value and conflate:
// a slow subscriber observes the latest value, not every intermediate one.
package relay

import (
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/feedkit-go/core/ds"
)

type DeliverPolicy string

const (
	// DeliverLast replays the most recent value (if any) on subscribe.
	DeliverLast DeliverPolicy = "last"
	// DeliverNew delivers only values published after subscribing.
	DeliverNew DeliverPolicy = "new"
)

type SubscribeOpts struct {
	deliverPolicy DeliverPolicy
}

type SubscribeOption func(opts *SubscribeOpts)

func WithDeliverPolicy(policy DeliverPolicy) SubscribeOption {
	return func(opts *SubscribeOpts) {
		opts.deliverPolicy = policy
	}
}

// Subscription is one subscriber's view of a relay. Values are received
// from Chan. The channel is closed when the subscription is cancelled or
// the relay is closed.
type Subscription[T any] struct {
	id     string
	ch     chan T
	cancel func()
	once   sync.Once
}

func (s *Subscription[T]) Chan() <-chan T { return s.ch }

// Cancel removes the subscription from its relay and closes Chan.
// It is safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
}

// Relay is a replay-1 broadcast hub for values of type T.
type Relay[T any] struct {
	mu      sync.Mutex
	subs    *ds.OrderedMap[*Subscription[T]]
	last    T
	hasLast bool
	closed  bool
}

func New[T any]() *Relay[T] {
	return &Relay[T]{
		subs: ds.NewOrderedMap[*Subscription[T]](),
	}
}

// Subscribe registers a new subscriber. With the default [DeliverLast]
// policy the most recent value, if any, is delivered immediately.
// Subscribing to a closed relay yields a subscription whose channel is
// already closed.
func (r *Relay[T]) Subscribe(opts ...SubscribeOption) *Subscription[T] {
	options := &SubscribeOpts{
		deliverPolicy: DeliverLast,
	}
	for _, opt := range opts {
		opt(options)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	subID := gonanoid.Must()
	sub := &Subscription[T]{
		id: subID,
		ch: make(chan T, 1),
	}
	sub.cancel = func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.subs.Get(subID); ok {
			r.subs.Delete(subID)
			close(sub.ch)
		}
	}

	if r.closed {
		close(sub.ch)
		return sub
	}

	r.subs.Set(subID, sub)
	if options.deliverPolicy == DeliverLast && r.hasLast {
		sub.ch <- r.last
	}
	return sub
}

// Publish delivers v to every current subscriber, in subscription order,
// and makes v the new replay value. Publishing on a closed relay is a no-op.
func (r *Relay[T]) Publish(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.last = v
	r.hasLast = true
	for _, sub := range r.subs.Values() {
		deliver(sub.ch, v)
	}
}

// Last returns the replay value, if one has been published.
func (r *Relay[T]) Last() (v T, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasLast
}

// Len returns the number of current subscribers.
func (r *Relay[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs.Len()
}

// Close terminates every subscription and marks the relay closed.
// A closed relay is never reused.
func (r *Relay[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, sub := range r.subs.Values() {
		close(sub.ch)
	}
	r.subs = ds.NewOrderedMap[*Subscription[T]]()
}

// deliver sends v on ch without blocking, displacing a stale undelivered
// value if the subscriber has not drained it yet.
func deliver[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
