package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/feedkit-go/core/relay"
)

func recvTimeout[T any](t *testing.T, sub *relay.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.Chan():
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
		panic("unreachable")
	}
}

func Test_Registry_DuplicateKey(t *testing.T) {
	reg := New[string, int]()
	defer reg.ClearAll()

	rly, err := reg.Register("x", func(ctx context.Context, _ string) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	require.NotNil(t, rly)

	_, err = reg.Register("x", func(ctx context.Context, _ string) (int, error) {
		return 2, nil
	})
	require.ErrorIs(t, err, ErrDuplicateKey)

	// The original handler is unaffected.
	sub := rly.Subscribe()
	defer sub.Cancel()
	reg.ApplyUpdate("x", "")
	require.Equal(t, 1, recvTimeout(t, sub))
}

func Test_Registry_Lookups(t *testing.T) {
	reg := New[string, int]()
	defer reg.ClearAll()

	_, ok := reg.Handler("absent")
	require.False(t, ok)
	_, ok = reg.Stream("absent")
	require.False(t, ok)

	rly, err := reg.Register("x", func(ctx context.Context, _ string) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	h, ok := reg.Handler("x")
	require.True(t, ok)
	require.Equal(t, "x", h.Key())
	require.Same(t, rly, h.Relay())

	got, ok := reg.Stream("x")
	require.True(t, ok)
	require.Same(t, rly, got)
}

func Test_Registry_ThrottledRefresh(t *testing.T) {
	var calls atomic.Int32
	reg := New[string, int32]()
	defer reg.ClearAll()

	rly, err := reg.Register("x", func(ctx context.Context, _ string) (int32, error) {
		return calls.Add(1), nil
	}, WithThrottleWindow(500*time.Millisecond))
	require.NoError(t, err)

	sub := rly.Subscribe()
	defer sub.Cancel()

	reg.ApplyUpdate("x", "a") // passes
	time.Sleep(100 * time.Millisecond)
	reg.ApplyUpdate("x", "b") // dropped, inside window
	time.Sleep(500 * time.Millisecond)
	reg.ApplyUpdate("x", "c") // passes, new window
	time.Sleep(200 * time.Millisecond)

	require.EqualValues(t, 2, calls.Load())
	require.EqualValues(t, 2, recvTimeout(t, sub))
}

// A request inside the throttle window must be discarded at arrival,
// even while a slow query is still running. If it were queued instead, it
// would fire as soon as the query returned past the window's end.
func Test_Registry_ThrottleDropsDuringSlowQuery(t *testing.T) {
	var calls atomic.Int32
	reg := New[string, int32]()
	defer reg.ClearAll()

	_, err := reg.Register("x", func(ctx context.Context, _ string) (int32, error) {
		n := calls.Add(1)
		select {
		case <-time.After(800 * time.Millisecond):
		case <-ctx.Done():
		}
		return n, nil
	}, WithThrottleWindow(300*time.Millisecond))
	require.NoError(t, err)

	reg.ApplyUpdate("x", "a") // passes, query runs past the window
	time.Sleep(100 * time.Millisecond)
	reg.ApplyUpdate("x", "b") // inside the window: discarded, not queued
	time.Sleep(1 * time.Second)

	require.EqualValues(t, 1, calls.Load())
}

func Test_Registry_ReplayToLateSubscriber(t *testing.T) {
	var calls atomic.Int32
	reg := New[string, string]()
	defer reg.ClearAll()

	rly, err := reg.Register("feed", func(ctx context.Context, _ string) (string, error) {
		calls.Add(1)
		return "v1", nil
	}, WithThrottleWindow(0))
	require.NoError(t, err)

	first := rly.Subscribe()
	reg.ApplyUpdate("feed", "")
	require.Equal(t, "v1", recvTimeout(t, first))
	first.Cancel()

	// A late subscriber receives the replay without a new query.
	late := rly.Subscribe()
	defer late.Cancel()
	require.Equal(t, "v1", recvTimeout(t, late))
	require.EqualValues(t, 1, calls.Load())
}

func Test_Registry_QueryFailureAbsorbed(t *testing.T) {
	var calls atomic.Int32
	reg := New[string, int]()
	defer reg.ClearAll()

	rly, err := reg.Register("feed", func(ctx context.Context, _ string) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("upstream down")
		}
		return 42, nil
	}, WithThrottleWindow(100*time.Millisecond))
	require.NoError(t, err)

	sub := rly.Subscribe()
	defer sub.Cancel()

	reg.ApplyUpdate("feed", "")
	time.Sleep(50 * time.Millisecond)

	// The failure produced no emission and did not kill the stream.
	select {
	case v := <-sub.Chan():
		t.Fatalf("unexpected emission %v", v)
	default:
	}

	// A later refresh succeeds and reaches the subscriber.
	time.Sleep(150 * time.Millisecond)
	reg.ApplyUpdate("feed", "")
	require.Equal(t, 42, recvTimeout(t, sub))
	require.EqualValues(t, 2, calls.Load())
}

func Test_Registry_Clear(t *testing.T) {
	reg := New[string, int]()

	rly, err := reg.Register("x", func(ctx context.Context, _ string) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	h, ok := reg.Handler("x")
	require.True(t, ok)

	sub := rly.Subscribe()
	reg.Clear("x")
	reg.Clear("x") // idempotent

	// Subscriptions terminate and the handler stops.
	_, open := <-sub.Chan()
	require.False(t, open)
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("handler did not stop")
	}
	require.Equal(t, 0, reg.Len())

	// The key can be registered again with a fresh handler.
	_, err = reg.Register("x", func(ctx context.Context, _ string) (int, error) {
		return 2, nil
	})
	require.NoError(t, err)
	reg.ClearAll()
}

func Test_Registry_ClearAll(t *testing.T) {
	reg := New[string, int]()

	for _, key := range []string{"a", "b", "c"} {
		_, err := reg.Register(key, func(ctx context.Context, _ string) (int, error) {
			return 1, nil
		})
		require.NoError(t, err)
	}
	require.Equal(t, 3, reg.Len())

	reg.ClearAll()
	require.Equal(t, 0, reg.Len())
}

func Test_Registry_ApplyUpdateWait(t *testing.T) {
	reg := New[string, int]()
	defer reg.ClearAll()

	block := make(chan struct{})
	_, err := reg.Register("x", func(ctx context.Context, p string) (int, error) {
		if p == "slow" {
			<-block
		}
		return 1, nil
	}, WithThrottleWindow(0))
	require.NoError(t, err)

	// Emission before the timer: updated.
	updated, err := reg.ApplyUpdateWait(t.Context(), "x", "fast", time.Second)
	require.NoError(t, err)
	require.True(t, updated)

	// Query slower than the timer: not updated. The query keeps running.
	updated, err = reg.ApplyUpdateWait(t.Context(), "x", "slow", 100*time.Millisecond)
	require.NoError(t, err)
	require.False(t, updated)
	close(block)
}

func Test_Registry_ApplyUpdateWait_ReplayIsNotConfirmation(t *testing.T) {
	reg := New[string, int]()
	defer reg.ClearAll()

	block := make(chan struct{})
	defer close(block)
	var calls atomic.Int32
	rly, err := reg.Register("x", func(ctx context.Context, _ string) (int, error) {
		if calls.Add(1) > 1 {
			<-block // later refreshes never finish
		}
		return 1, nil
	}, WithThrottleWindow(0))
	require.NoError(t, err)

	// Seed a replay value.
	sub := rly.Subscribe()
	reg.ApplyUpdate("x", "")
	require.Equal(t, 1, recvTimeout(t, sub))
	sub.Cancel()

	// The stale replay value must not count as confirmation.
	updated, err := reg.ApplyUpdateWait(t.Context(), "x", "", 100*time.Millisecond)
	require.NoError(t, err)
	require.False(t, updated)
}

func Test_Registry_ApplyUpdateWait_UnknownKey(t *testing.T) {
	reg := New[string, int]()

	updated, err := reg.ApplyUpdateWait(t.Context(), "nope", "", time.Second)
	require.ErrorIs(t, err, ErrUnknownStream)
	require.False(t, updated)
}

func Test_Registry_ApplyUpdate_UnknownKeyNoop(t *testing.T) {
	reg := New[string, int]()
	reg.ApplyUpdate("nope", "payload") // must not panic
}
