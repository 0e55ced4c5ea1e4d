package query

import "errors"

// Sentinel errors for the operation layer.
var (
	// ErrNotFound is returned by stores when a key has no entry.
	ErrNotFound = errors.New("query: entry not found")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("query: store closed")

	// ErrMarshal is returned when entry serialization fails.
	ErrMarshal = errors.New("query: failed to marshal entry")

	// ErrUnmarshal is returned when entry deserialization fails.
	ErrUnmarshal = errors.New("query: failed to unmarshal entry")
)
