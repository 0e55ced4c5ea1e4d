//go:build integration

package query_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/authfold/authfold/pkg/query"
)

const testRedisURL = "redis://localhost:6379/0"

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = testRedisURL
	}

	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	require.NoError(t, client.Ping(context.Background()).Err(), "failed to connect to Redis")

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return client
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		t.Parallel()

		s := query.NewRedis[string](newTestRedisClient(t), query.WithPrefix("miss"))
		_, err := s.Get(context.Background(), "absent")
		require.ErrorIs(t, err, query.ErrNotFound)
	})

	t.Run("round-trips entries with metadata", func(t *testing.T) {
		t.Parallel()

		s := query.NewRedis[string](newTestRedisClient(t), query.WithPrefix("roundtrip"))
		ctx := context.Background()

		stored := query.Entry[string]{Value: "v", StoredAt: time.Now().UTC(), Stale: true}
		require.NoError(t, s.Set(ctx, "k", stored))

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", got.Value)
		require.True(t, got.Stale)
		require.WithinDuration(t, stored.StoredAt, got.StoredAt, time.Second)
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		t.Parallel()

		s := query.NewRedis[int](newTestRedisClient(t), query.WithPrefix("del"))
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "k", query.Entry[int]{Value: 1, StoredAt: time.Now()}))
		require.NoError(t, s.Delete(ctx, "k"))

		_, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, query.ErrNotFound)
	})

	t.Run("query works end to end on redis", func(t *testing.T) {
		t.Parallel()

		s := query.NewRedis[int](newTestRedisClient(t), query.WithPrefix("e2e"))
		q := query.New("counter", s, func(ctx context.Context) (int, error) {
			return 11, nil
		})

		ctx := context.Background()
		v, err := q.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, 11, v)

		require.NoError(t, q.Set(ctx, 22))
		v, err = q.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, 22, v)
	})
}
