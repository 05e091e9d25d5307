package redisad

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"estates_console/internal/adapters/observability"
)

// Store is a domain.Store on a redis keyspace. Keys are namespaced with
// prefix so several consoles can share one instance.
type Store struct {
	c      *redis.Client
	prefix string
}

func New(addr, pass string, db int) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), "estates:")
}

func NewWithClient(c *redis.Client, prefix string) *Store {
	return &Store{c: c, prefix: prefix}
}

func (r *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.c.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return nil, false, nil
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		return nil, false, err
	}
	observability.ObserveCache("redis", "hit")
	return v, true, nil
}

// Set stores value without expiry; the snapshot must outlive restarts.
func (r *Store) Set(ctx context.Context, key string, value []byte) error {
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *Store) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, r.prefix+key).Err()
}

func (r *Store) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Store) Close() error { return r.c.Close() }
