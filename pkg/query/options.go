package query

import (
	"errors"
	"log/slog"
	"time"
)

// Default read-operation behavior.
const (
	// DefaultTTL is how long a fetched entry counts as fresh.
	DefaultTTL = 5 * time.Minute

	// DefaultRetryAttempts is the number of additional attempts after a
	// failed fetch, unless the retry policy rules the error out.
	DefaultRetryAttempts = 2

	// DefaultRetryDelay is the base pause between attempts; it grows
	// linearly with the attempt number.
	DefaultRetryDelay = 200 * time.Millisecond

	// DefaultFetchTimeout bounds a shared fetch. The fetch is detached
	// from the caller that started it, so this deadline is what stops
	// it when the backend hangs.
	DefaultFetchTimeout = 30 * time.Second
)

// Option configures a Query.
type Option[V any] func(*Query[V])

// WithTTL sets the freshness window. Entries older than ttl are refetched
// on the next read. Non-positive means entries never age out.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(q *Query[V]) {
		q.ttl = ttl
	}
}

// WithFetchTimeout sets the deadline for a shared fetch, retries included.
func WithFetchTimeout[V any](d time.Duration) Option[V] {
	return func(q *Query[V]) {
		if d > 0 {
			q.fetchTimeout = d
		}
	}
}

// WithRetry sets the number of additional fetch attempts and the base delay
// between them.
func WithRetry[V any](attempts int, delay time.Duration) Option[V] {
	return func(q *Query[V]) {
		if attempts >= 0 {
			q.retryAttempts = attempts
		}
		if delay > 0 {
			q.retryDelay = delay
		}
	}
}

// WithoutRetry disables retries entirely: a failed fetch is surfaced
// immediately. The session query is configured this way.
func WithoutRetry[V any]() Option[V] {
	return func(q *Query[V]) {
		q.retryAttempts = 0
	}
}

// WithRetryPolicy replaces the decision function consulted before retrying.
// The default, [DefaultRetryPolicy], skips retries for client errors.
func WithRetryPolicy[V any](policy func(error) bool) Option[V] {
	return func(q *Query[V]) {
		if policy != nil {
			q.shouldRetry = policy
		}
	}
}

// WithLogger enables debug logging of fetches and store failures.
func WithLogger[V any](l *slog.Logger) Option[V] {
	return func(q *Query[V]) {
		if l != nil {
			q.log = l
		}
	}
}

// statusCoder is implemented by errors that carry an HTTP status
// (pkg/apiclient.Error does).
type statusCoder interface {
	HTTPStatus() int
}

// DefaultRetryPolicy retries everything except errors carrying an HTTP
// status in [400, 500): a client error will not improve on a second try.
func DefaultRetryPolicy(err error) bool {
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatus()
		if code >= 400 && code < 500 {
			return false
		}
	}
	return true
}
