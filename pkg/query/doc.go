// Package query is a small cache-backed operation layer: cached reads with
// freshness, retry policy, and deduplication, plus writes with declarative
// side effects.
//
// # Reads
//
// A [Query] binds a fixed store key to a fetch function:
//
//	q := query.New("auth:session", query.NewMemory[Record](), fetchSession,
//	    query.WithTTL[Record](5*time.Minute),
//	    query.WithoutRetry[Record](),
//	)
//
//	rec, err := q.Get(ctx)
//
// Get serves the cached entry while it is fresh. On a miss, concurrent
// callers share one fetch (singleflight). The fetch is detached from the
// caller that started it: a caller whose context ends stops waiting, while
// the fetch keeps running under its own timeout and still caches its
// result for the other waiters. Failed fetches follow the retry
// policy: by default up to 2 additional attempts, skipped entirely for
// errors carrying an HTTP status in [400, 500).
//
// # Writes
//
// A [Mutation] wraps a write operation with hooks:
//
//	signIn := query.NewMutation(api.SignInEmail).
//	    OnSuccess(func(ctx context.Context, _ SignInRequest, rec Record) {
//	        _ = q.Set(ctx, rec)
//	    })
//
// Mutations are never retried; their error is surfaced unchanged.
//
// # Ordering
//
// The shared entry follows last-completed-write-wins: a direct Set or Clear
// takes a new generation, and an in-flight fetch that started earlier
// discards its result instead of reverting the entry.
//
// # Stores
//
// [Memory] keeps entries in-process. [Redis] persists them across restarts
// using a go-redis client. Both implement [Store] and can be swapped freely.
//
// # Invalidation
//
// [Query.Invalidate] marks an entry stale so the next read refetches.
// A [Scope] groups queries so one write can invalidate them together.
package query
