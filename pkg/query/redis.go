package query

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by Redis, for frontends that must keep their
// cached session slot across process restarts. Entries are serialized as
// JSON. Freshness is still decided by the query's TTL against StoredAt;
// the Redis expiry below is only a retention cap so abandoned keys do not
// linger forever.
type Redis[V any] struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// RedisOption configures the Redis store.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix    string
	retention time.Duration
}

// WithPrefix namespaces all keys as "<prefix>:<key>".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithRetention caps how long an entry survives in Redis regardless of
// staleness. Default: 24 hours.
func WithRetention(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		if d > 0 {
			o.retention = d
		}
	}
}

// NewRedis creates a Redis-backed store.
//
// Example:
//
//	store := query.NewRedis[authapi.SessionRecord](client,
//	    query.WithPrefix("authfold"),
//	)
func NewRedis[V any](client redis.UniversalClient, opts ...RedisOption) *Redis[V] {
	o := &redisOptions{retention: 24 * time.Hour}
	for _, opt := range opts {
		opt(o)
	}
	return &Redis[V]{client: client, prefix: o.prefix, retention: o.retention}
}

// Get retrieves the entry for key.
func (r *Redis[V]) Get(ctx context.Context, key string) (Entry[V], error) {
	data, err := r.client.Get(ctx, r.prefixed(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry[V]{}, ErrNotFound
		}
		return Entry[V]{}, err
	}

	var e Entry[V]
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry[V]{}, errors.Join(ErrUnmarshal, err)
	}
	return e, nil
}

// Set replaces the entry for key.
func (r *Redis[V]) Set(ctx context.Context, key string, e Entry[V]) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}
	return r.client.Set(ctx, r.prefixed(key), data, r.retention).Err()
}

// Delete removes the entry for key.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefixed(key)).Err()
}

// Close is a no-op; the Redis client lifecycle belongs to the caller.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) prefixed(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

var _ Store[any] = (*Redis[any])(nil)
