package query

import (
	"context"
	"time"
)

// Entry is a stored value with the bookkeeping the operation layer needs:
// when it was written (freshness is decided against the query's TTL) and
// whether it has been marked stale by an invalidation.
type Entry[V any] struct {
	StoredAt time.Time `json:"storedAt"`
	Value    V         `json:"value"`
	Stale    bool      `json:"stale"`
}

// Fresh reports whether the entry is usable without a refetch.
// A non-positive TTL means entries never go stale by age.
func (e Entry[V]) Fresh(ttl time.Duration) bool {
	if e.Stale {
		return false
	}
	if ttl <= 0 {
		return true
	}
	return time.Since(e.StoredAt) < ttl
}

// Store persists entries for the operation layer. Implementations must be
// safe for concurrent use; the layer relies on each Set fully replacing the
// entry so that readers never observe a torn value.
type Store[V any] interface {
	// Get retrieves the entry for key.
	// Returns ErrNotFound if no entry exists.
	Get(ctx context.Context, key string) (Entry[V], error)

	// Set replaces the entry for key.
	Set(ctx context.Context, key string, e Entry[V]) error

	// Delete removes the entry for key.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
