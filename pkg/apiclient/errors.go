package apiclient

import "errors"

// Error categories. The backend supplies its own category for responses that
// carry a JSON error body; these cover every other outcome.
const (
	CategoryAPI     = "API Error"     // non-2xx response without a usable body
	CategoryNetwork = "Network Error" // request sent, no response received
	CategoryRequest = "Request Error" // request could not be constructed or sent
)

// Fallback messages used when the backend does not provide one.
const (
	FallbackMessage = "An error occurred"
	NetworkMessage  = "Unable to reach the server. Please try again."
)

// StatusNoResponse is the sentinel status code reported when no response was
// received at all. It is not a real HTTP status from the backend; it signals
// "could not reach server" to callers.
const StatusNoResponse = 503

// Sentinel errors for client construction.
var (
	// ErrEmptyBaseURL is returned when New is called without a base URL.
	ErrEmptyBaseURL = errors.New("apiclient: base URL required")

	// ErrInvalidBaseURL is returned when the base URL cannot be parsed or
	// uses a scheme other than http/https.
	ErrInvalidBaseURL = errors.New("apiclient: invalid base URL")
)

// Error is the single shape every transport failure is normalized to.
// No raw transport-level error escapes the client.
type Error struct {
	Detail     any    // decoded response body, if any
	Category   string // backend error code or one of the Category constants
	Message    string // user-facing message
	StatusCode int    // HTTP status, or StatusNoResponse/500 sentinels
}

func (e *Error) Error() string {
	return e.Category + ": " + e.Message
}

// HTTPStatus returns the status code carried by the error.
// Retry policies use it to distinguish client errors from transient failures.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// IsError reports whether err is a normalized transport error.
func IsError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

// AsError extracts the normalized transport error if present.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
