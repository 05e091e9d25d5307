package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "estates_console/internal/adapters/redis"
)

func newStore(t *testing.T) (*redisad.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := redisad.NewWithClient(rdb, "estates:")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := newStore(t)
	v, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestStore_SetGetDel(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Set(ctx, "imperial_estates_db", []byte(`[{"id":"P1"}]`)))

	// prefixed and without TTL
	raw, err := mr.Get("estates:imperial_estates_db")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"P1"}]`, raw)
	assert.Zero(t, mr.TTL("estates:imperial_estates_db"))

	v, ok, err := s.Get(ctx, "imperial_estates_db")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[{"id":"P1"}]`), v)

	require.NoError(t, s.Del(ctx, "imperial_estates_db"))
	_, ok, err = s.Get(ctx, "imperial_estates_db")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ErrorWhenServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	s := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), "estates:")
	defer s.Close()
	mr.Close()

	_, ok, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}
