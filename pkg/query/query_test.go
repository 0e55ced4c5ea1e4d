package query_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/authfold/authfold/pkg/query"
)

// httpErr mimics a transport error carrying an HTTP status.
type httpErr struct {
	code int
}

func (e *httpErr) Error() string   { return "http error" }
func (e *httpErr) HTTPStatus() int { return e.code }

// pausableStore blocks its first read until released, widening the window
// between a read and the write that depends on it.
type pausableStore struct {
	query.Store[int]
	reading chan struct{}
	release chan struct{}
	first   sync.Once
}

func (s *pausableStore) Get(ctx context.Context, key string) (query.Entry[int], error) {
	s.first.Do(func() {
		close(s.reading)
		<-s.release
	})
	return s.Store.Get(ctx, key)
}

func TestMemory(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		t.Parallel()

		s := query.NewMemory[string]()
		_, err := s.Get(context.Background(), "missing")
		require.ErrorIs(t, err, query.ErrNotFound)
	})

	t.Run("set replaces the whole entry", func(t *testing.T) {
		t.Parallel()

		s := query.NewMemory[string]()
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "k", query.Entry[string]{Value: "a", StoredAt: time.Now(), Stale: true}))
		require.NoError(t, s.Set(ctx, "k", query.Entry[string]{Value: "b", StoredAt: time.Now()}))

		e, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "b", e.Value)
		require.False(t, e.Stale)
	})

	t.Run("writes fail after close", func(t *testing.T) {
		t.Parallel()

		s := query.NewMemory[string]()
		require.NoError(t, s.Close())
		err := s.Set(context.Background(), "k", query.Entry[string]{Value: "v"})
		require.ErrorIs(t, err, query.ErrClosed)
	})
}

func TestQuery_Get(t *testing.T) {
	t.Parallel()

	t.Run("serves fresh entries without refetching", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 42, nil
		})

		ctx := context.Background()
		for range 3 {
			v, err := q.Get(ctx)
			require.NoError(t, err)
			require.Equal(t, 42, v)
		}
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("refetches once the TTL expires", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			return int(calls.Load()), nil
		}, query.WithTTL[int](20*time.Millisecond))

		ctx := context.Background()
		v, err := q.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, v)

		time.Sleep(30 * time.Millisecond)

		v, err = q.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, v)
	})

	t.Run("deduplicates concurrent misses", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			time.Sleep(30 * time.Millisecond)
			return 7, nil
		})

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := q.Get(context.Background())
				require.NoError(t, err)
				require.Equal(t, 7, v)
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("surfaces the fetch error unchanged", func(t *testing.T) {
		t.Parallel()

		want := errors.New("boom")
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			return 0, want
		}, query.WithoutRetry[int]())

		_, err := q.Get(context.Background())
		require.ErrorIs(t, err, want)
		require.True(t, q.Settled())
		require.ErrorIs(t, q.Err(), want)
	})
}

func TestQuery_RetryPolicy(t *testing.T) {
	t.Parallel()

	t.Run("retries transient failures up to the limit", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 0, &httpErr{code: 502}
		}, query.WithRetry[int](2, time.Millisecond))

		_, err := q.Get(context.Background())
		require.Error(t, err)
		require.EqualValues(t, 3, calls.Load(), "one attempt plus two retries")
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 0, &httpErr{code: 404}
		}, query.WithRetry[int](2, time.Millisecond))

		_, err := q.Get(context.Background())
		require.Error(t, err)
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("recovers when a retry succeeds", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			if calls.Add(1) < 3 {
				return 0, &httpErr{code: 500}
			}
			return 9, nil
		}, query.WithRetry[int](2, time.Millisecond))

		v, err := q.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, 9, v)
		require.NoError(t, q.Err())
	})

	t.Run("without retry fails on the first attempt", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 0, &httpErr{code: 503}
		}, query.WithoutRetry[int]())

		_, err := q.Get(context.Background())
		require.Error(t, err)
		require.EqualValues(t, 1, calls.Load())
	})
}

func TestQuery_Writes(t *testing.T) {
	t.Parallel()

	t.Run("set overwrites and reads back without fetching", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 1, nil
		})

		ctx := context.Background()
		require.NoError(t, q.Set(ctx, 99))

		v, err := q.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, 99, v)
		require.Zero(t, calls.Load())
		require.True(t, q.Settled())
	})

	t.Run("in-flight fetch does not revert a completed write", func(t *testing.T) {
		t.Parallel()

		fetchStarted := make(chan struct{})
		releaseFetch := make(chan struct{})
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			close(fetchStarted)
			<-releaseFetch
			return 1, nil // older value
		})

		ctx := context.Background()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = q.Get(ctx)
		}()

		<-fetchStarted
		require.NoError(t, q.Set(ctx, 2)) // newer value wins
		close(releaseFetch)
		<-done

		v, ok := q.Peek(ctx)
		require.True(t, ok)
		require.Equal(t, 2, v, "fetch result must not revert the later write")
	})

	t.Run("clear empties the slot and forces a refetch", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 5, nil
		})

		ctx := context.Background()
		require.NoError(t, q.Set(ctx, 10))
		require.NoError(t, q.Clear(ctx))

		v, ok := q.Peek(ctx)
		require.True(t, ok)
		require.Zero(t, v, "slot is emptied immediately")

		v, err := q.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, 5, v)
		require.EqualValues(t, 1, calls.Load(), "stale empty entry is not served")
	})

	t.Run("invalidate does not revert a concurrently completed set", func(t *testing.T) {
		t.Parallel()

		st := &pausableStore{
			Store:   query.NewMemory[int](),
			reading: make(chan struct{}),
			release: make(chan struct{}),
		}
		var calls atomic.Int64
		q := query.New("k", st, func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 0, nil
		})

		ctx := context.Background()
		require.NoError(t, q.Set(ctx, 1))

		invDone := make(chan error, 1)
		go func() { invDone <- q.Invalidate(ctx) }()
		<-st.reading

		// A write landing while the invalidation is mid-flight must not
		// be clobbered by the older entry the invalidation read.
		setDone := make(chan error, 1)
		go func() { setDone <- q.Set(ctx, 2) }()

		close(st.release)
		require.NoError(t, <-invDone)
		require.NoError(t, <-setDone)

		v, ok := q.Peek(ctx)
		require.True(t, ok)
		require.Equal(t, 2, v, "the later-completed write stays")
		require.Zero(t, calls.Load())
	})

	t.Run("invalidate keeps the value but forces a refetch", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 3, nil
		})

		ctx := context.Background()
		require.NoError(t, q.Set(ctx, 8))
		require.NoError(t, q.Invalidate(ctx))

		v, ok := q.Peek(ctx)
		require.True(t, ok)
		require.Equal(t, 8, v)

		v, err := q.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, v)
		require.EqualValues(t, 1, calls.Load())
	})
}

func TestScope(t *testing.T) {
	t.Parallel()

	t.Run("invalidates every registered member", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		scope := query.NewScope()

		var fetches atomic.Int64
		members := make([]*query.Query[int], 3)
		for i := range members {
			members[i] = query.New("k", query.NewMemory[int](), func(ctx context.Context) (int, error) {
				fetches.Add(1)
				return 1, nil
			})
			require.NoError(t, members[i].Set(ctx, i))
			scope.Register(members[i])
		}

		require.NoError(t, scope.InvalidateAll(ctx))

		for _, m := range members {
			_, err := m.Get(ctx)
			require.NoError(t, err)
		}
		require.EqualValues(t, 3, fetches.Load())
	})
}

func TestMutation(t *testing.T) {
	t.Parallel()

	t.Run("runs once and fires success hooks in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		m := query.NewMutation(
			func(ctx context.Context, in string) (string, error) {
				order = append(order, "run")
				return in + "!", nil
			}).
			OnSuccess(func(ctx context.Context, in, out string) {
				order = append(order, "first")
			}).
			OnSuccess(func(ctx context.Context, in, out string) {
				order = append(order, "second")
			})

		out, err := m.Do(context.Background(), "hi")
		require.NoError(t, err)
		require.Equal(t, "hi!", out)
		require.Equal(t, []string{"run", "first", "second"}, order)
	})

	t.Run("surfaces the error as-is and fires error hooks", func(t *testing.T) {
		t.Parallel()

		want := &httpErr{code: 401}
		var seen error
		m := query.NewMutation(
			func(ctx context.Context, in int) (int, error) {
				return 0, want
			}).
			OnError(func(ctx context.Context, in int, err error) {
				seen = err
			})

		_, err := m.Do(context.Background(), 1)
		require.ErrorIs(t, err, want)
		require.ErrorIs(t, seen, want)
	})

	t.Run("never retries", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := query.NewMutation(func(ctx context.Context, in int) (int, error) {
			calls.Add(1)
			return 0, errors.New("nope")
		})

		_, err := m.Do(context.Background(), 1)
		require.Error(t, err)
		require.EqualValues(t, 1, calls.Load())
	})
}

func TestQuery_DetachedFetch(t *testing.T) {
	t.Parallel()

	t.Run("caller cancellation does not settle or abort the fetch", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		release := make(chan struct{})
		q := query.New("k", query.NewMemory[int](),
			func(ctx context.Context) (int, error) {
				calls.Add(1)
				select {
				case <-release:
					return 7, nil
				case <-ctx.Done():
					return 0, ctx.Err()
				}
			},
			query.WithoutRetry[int](),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := q.Get(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.False(t, q.Settled(), "an abandoned wait is still loading, not settled")
		require.NoError(t, q.Err())

		// The fetch outlives the caller and its store write lands.
		close(release)
		require.Eventually(t, q.Settled, time.Second, 5*time.Millisecond)

		v, err := q.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, 7, v)
		require.EqualValues(t, 1, calls.Load(), "cached by the abandoned fetch, not refetched")
	})

	t.Run("co-waiters survive the initiating caller cancelling", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		fetchStarted := make(chan struct{})
		release := make(chan struct{})
		q := query.New("k", query.NewMemory[int](),
			func(ctx context.Context) (int, error) {
				calls.Add(1)
				close(fetchStarted)
				select {
				case <-release:
					return 7, nil
				case <-ctx.Done():
					return 0, ctx.Err()
				}
			},
			query.WithoutRetry[int](),
		)

		initCtx, cancelInit := context.WithCancel(context.Background())
		initErr := make(chan error, 1)
		go func() {
			_, err := q.Get(initCtx)
			initErr <- err
		}()
		<-fetchStarted

		type result struct {
			v   int
			err error
		}
		joined := make(chan result, 1)
		go func() {
			v, err := q.Get(context.Background())
			joined <- result{v, err}
		}()

		// Let the second caller join the in-flight fetch before the
		// initiator gives up.
		time.Sleep(20 * time.Millisecond)
		cancelInit()
		require.ErrorIs(t, <-initErr, context.Canceled)

		close(release)
		res := <-joined
		require.NoError(t, res.err, "the initiator's cancellation is its own, not the flight's")
		require.Equal(t, 7, res.v)
		require.EqualValues(t, 1, calls.Load())

		_, ok := q.Peek(context.Background())
		require.True(t, ok, "the shared fetch cached its result")
	})

	t.Run("fetch timeout aborts without settling", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		q := query.New("k", query.NewMemory[int](),
			func(ctx context.Context) (int, error) {
				if calls.Add(1) == 1 {
					<-ctx.Done()
					return 0, ctx.Err()
				}
				return 7, nil
			},
			query.WithoutRetry[int](),
			query.WithFetchTimeout[int](20*time.Millisecond),
		)

		_, err := q.Get(context.Background())
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.False(t, q.Settled())

		// The next read gets a fresh attempt.
		v, err := q.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, 7, v)
		require.True(t, q.Settled())
		require.EqualValues(t, 2, calls.Load())
	})
}
