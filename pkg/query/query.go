package query

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Query is a cached read operation bound to a fixed store key.
//
// Reads are deduplicated: concurrent Gets that miss the cache share a single
// fetch. Writes through [Query.Set] take precedence over in-flight fetches:
// a fetch that started before a Set completes discards its result instead of
// reverting the entry, so the last completed write always wins.
type Query[V any] struct {
	store       Store[V]
	fetch       func(ctx context.Context) (V, error)
	shouldRetry func(error) bool
	log         *slog.Logger
	key         string

	group singleflight.Group

	mu         sync.Mutex
	generation uint64
	lastErr    error

	settled atomic.Bool

	ttl           time.Duration
	fetchTimeout  time.Duration
	retryDelay    time.Duration
	retryAttempts int
}

// New creates a Query for key, fetching misses with fn.
//
// Example:
//
//	q := query.New("auth:session", store, func(ctx context.Context) (authapi.SessionRecord, error) {
//	    return api.GetSession(ctx)
//	}, query.WithoutRetry[authapi.SessionRecord]())
func New[V any](key string, store Store[V], fn func(ctx context.Context) (V, error), opts ...Option[V]) *Query[V] {
	q := &Query[V]{
		key:           key,
		store:         store,
		fetch:         fn,
		ttl:           DefaultTTL,
		fetchTimeout:  DefaultFetchTimeout,
		retryAttempts: DefaultRetryAttempts,
		retryDelay:    DefaultRetryDelay,
		shouldRetry:   DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Key returns the fixed store key.
func (q *Query[V]) Key() string {
	return q.key
}

// Get returns the cached value, fetching it if the entry is missing, stale,
// or older than the TTL. Concurrent callers share one fetch. A caller whose
// context ends stops waiting with its own context error but does not abort
// the shared fetch; the fetch completes and caches its result for the next
// read. The fetch error is returned as produced by the fetch function.
func (q *Query[V]) Get(ctx context.Context) (V, error) {
	if e, err := q.store.Get(ctx, q.key); err == nil && e.Fresh(q.ttl) {
		q.settled.Store(true)
		return e.Value, nil
	} else if err != nil && !errors.Is(err, ErrNotFound) && q.log != nil {
		q.log.Warn("store read failed, refetching", slog.String("key", q.key), slog.Any("error", err))
	}

	// The shared fetch is detached from the initiating caller so one
	// consumer giving up cannot abort it for everyone. Each waiter honors
	// only its own context; the fetch runs under its own deadline and
	// applies its store write even after every waiter has left.
	ch := q.group.DoChan(q.key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.fetchTimeout)
		defer cancel()
		return q.resolve(fctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// resolve runs the fetch with the retry policy and applies the result to the
// store unless a direct write completed while the fetch was in flight.
func (q *Query[V]) resolve(ctx context.Context) (V, error) {
	q.mu.Lock()
	gen := q.generation
	q.mu.Unlock()

	var (
		v   V
		err error
	)
	for attempt := 0; ; attempt++ {
		v, err = q.fetch(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			// The fetch deadline expired, not the backend answering.
			// The read is aborted rather than settled, so the next
			// caller tries again.
			var zero V
			return zero, ctx.Err()
		}
		if attempt >= q.retryAttempts || !q.shouldRetry(err) {
			q.settle(err)
			var zero V
			return zero, err
		}
		if waitErr := sleep(ctx, time.Duration(attempt+1)*q.retryDelay); waitErr != nil {
			var zero V
			return zero, waitErr
		}
	}

	q.mu.Lock()
	// A Set, Clear, or newer fetch landed while this fetch was in flight.
	// Applying our result now would revert the entry to older data, so the
	// winning write stays and the fetch result is discarded.
	superseded := q.generation != gen
	if !superseded {
		q.generation++
		if storeErr := q.store.Set(ctx, q.key, Entry[V]{Value: v, StoredAt: time.Now()}); storeErr != nil && q.log != nil {
			q.log.Warn("store write failed", slog.String("key", q.key), slog.Any("error", storeErr))
		}
	}
	q.lastErr = nil
	q.settled.Store(true)
	q.mu.Unlock()

	if superseded {
		if e, err := q.store.Get(ctx, q.key); err == nil {
			return e.Value, nil
		}
	}
	return v, nil
}

// Set overwrites the cached entry directly. Used by write operations to
// apply their success effect without a refetch.
func (q *Query[V]) Set(ctx context.Context, v V) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.generation++
	q.lastErr = nil
	q.settled.Store(true)
	return q.store.Set(ctx, q.key, Entry[V]{Value: v, StoredAt: time.Now()})
}

// Clear replaces the entry with the zero value and marks it stale, forcing
// the next read to refetch rather than serve the emptied slot.
func (q *Query[V]) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.generation++
	q.lastErr = nil
	q.settled.Store(true)
	var zero V
	return q.store.Set(ctx, q.key, Entry[V]{Value: zero, StoredAt: time.Now(), Stale: true})
}

// Invalidate marks the current entry stale without touching its value.
// The next Get refetches; readers in between still see the old value only
// through Peek, never through Get.
func (q *Query[V]) Invalidate(ctx context.Context) error {
	// The read-modify-write runs under q.mu so a Set completing in
	// between cannot be reverted to the entry read here.
	q.mu.Lock()
	defer q.mu.Unlock()

	e, err := q.store.Get(ctx, q.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	q.generation++
	e.Stale = true
	return q.store.Set(ctx, q.key, e)
}

// Peek returns the current cached value without triggering a fetch.
// The second return is false when no entry exists.
func (q *Query[V]) Peek(ctx context.Context) (V, bool) {
	e, err := q.store.Get(ctx, q.key)
	if err != nil {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Settled reports whether the initial read has completed, successfully or
// not. Consumers use it to distinguish "still loading" from "anonymous".
func (q *Query[V]) Settled() bool {
	return q.settled.Load()
}

// Err returns the error from the most recent failed fetch, or nil after a
// success or a direct write.
func (q *Query[V]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

func (q *Query[V]) settle(err error) {
	q.mu.Lock()
	q.lastErr = err
	q.mu.Unlock()
	q.settled.Store(true)
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Invalidator is anything whose cached state can be marked stale.
// Both Query and application-defined caches can participate in a Scope.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Scope groups related cached operations so a write can mark them all stale
// at once (sign-out invalidates every auth-scoped entry).
type Scope struct {
	mu      sync.Mutex
	members []Invalidator
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// Register adds a member to the scope.
func (s *Scope) Register(inv Invalidator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, inv)
}

// InvalidateAll marks every registered member stale. All members are visited
// even if some fail; failures are joined.
func (s *Scope) InvalidateAll(ctx context.Context) error {
	s.mu.Lock()
	members := make([]Invalidator, len(s.members))
	copy(members, s.members)
	s.mu.Unlock()

	var errs []error
	for _, inv := range members {
		if err := inv.Invalidate(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
