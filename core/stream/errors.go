package stream

import "errors"

var (
	// ErrDuplicateKey is returned by Register when the key already has a
	// live handler.
	ErrDuplicateKey = errors.New("stream already registered")

	// ErrUnknownStream is returned by ApplyUpdateWait when no handler is
	// registered for the key.
	ErrUnknownStream = errors.New("unknown stream")
)
