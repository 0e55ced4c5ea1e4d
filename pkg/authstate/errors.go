package authstate

import "errors"

var (
	// ErrNotConfigured is returned when derived auth state is consumed
	// outside a scope where a Manager has been wired in. It guards against
	// forgetting to install the manager on the request context.
	ErrNotConfigured = errors.New("authstate: manager not configured")
)

// FallbackNotification is shown when a failed write operation carries no
// usable message.
const FallbackNotification = "Something went wrong. Please try again."
