// Package stream provides a registry of named, throttled live feeds with
// replay of the most recent value.
//
// A stream is registered once per logical feed. Consumers subscribe to the
// returned relay and request refreshes via ApplyUpdate; a late subscriber
// immediately receives the last emitted value without a new query:
//
//	reg := stream.New[string, *Feed]()
//
//	rly, err := reg.Register("feed", func(ctx context.Context, cursor string) (*Feed, error) {
//	    return api.FetchFeed(ctx, cursor)
//	})
//
//	sub := rly.Subscribe()
//	defer sub.Cancel()
//
//	reg.ApplyUpdate("feed", "cursor-1")
//	for feed := range sub.Chan() {
//	    render(feed)
//	}
//
// # Throttling
//
// Refresh requests pass a leading-edge throttle: the first request in a
// window (default one second) triggers the query, the rest of the window's
// requests are discarded. Requests are never queued across windows.
//
// # Failures
//
// A failing query is absorbed: subscribers observe no error and the stream
// stays usable. Callers that need to see failures wrap their query function
// with their own signaling before registering it.
//
// # Teardown
//
// Clear and ClearAll stop the handler's pipeline and terminate every
// subscription. A cleared key can be registered again; this builds an
// entirely new handler.
package stream
