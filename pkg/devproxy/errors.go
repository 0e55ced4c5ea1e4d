package devproxy

import "errors"

var (
	// ErrMissingOrigin is returned when the backend origin is not configured.
	// The proxy refuses to start rather than forwarding into the void.
	ErrMissingOrigin = errors.New("devproxy: backend origin is not set")

	// ErrInvalidOrigin is returned for origins that are not absolute
	// http(s) URLs.
	ErrInvalidOrigin = errors.New("devproxy: invalid backend origin")
)
