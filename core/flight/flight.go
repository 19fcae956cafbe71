// Package flight provides a one-shot asynchronous computation whose result
// can be awaited by any number of goroutines.
//
// A [Flight] wraps a function that is executed at most once. Goroutines call
// [Flight.Wait] to block until the function completes; all of them receive
// the same value and error. A completed flight is never reused.
package flight

import (
	"sync/atomic"
)

// Flight holds the state of one computation of a value of type T.
type Flight[T any] struct {
	done    chan struct{}
	val     T
	err     error
	fn      func() (T, error)
	started atomic.Bool
	joins   atomic.Int64
}

// New creates a flight for fn. The function is not invoked until Run or
// RunAsync is called.
func New[T any](fn func() (T, error)) *Flight[T] {
	return &Flight[T]{
		done: make(chan struct{}),
		fn:   fn,
	}
}

// Done returns a channel that is closed when the computation has finished.
func (f *Flight[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the computation has finished and returns its result.
func (f *Flight[T]) Wait() (T, error) {
	f.joins.Add(1)
	<-f.done
	return f.val, f.err
}

// Joins returns the number of callers that waited on this flight.
func (f *Flight[T]) Joins() int64 {
	return f.joins.Load()
}

// Run executes fn synchronously, exactly once. It returns true for the call
// that actually ran the function and false for every later call.
func (f *Flight[T]) Run() bool {
	return f.run(false)
}

// RunAsync executes fn in a new goroutine, exactly once, without waiting for
// it to finish. It returns true for the call that started the function.
func (f *Flight[T]) RunAsync() bool {
	return f.run(true)
}

func (f *Flight[T]) run(async bool) bool {
	// Only the caller that wins the CAS executes fn.
	if !f.started.CompareAndSwap(false, true) {
		return false
	}
	if async {
		go f.execute()
	} else {
		f.execute()
	}
	return true
}

func (f *Flight[T]) execute() {
	f.val, f.err = f.fn()
	close(f.done)
}
