package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFallback is returned by Get when the key is absent or
	// expired and no fallback was supplied.
	ErrMissingFallback = errors.New("no fallback for missing or expired key")
)

// FetchError wraps a failure of a fallback fetch. Every caller joined on
// the same in-flight fetch receives the identical *FetchError.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
