package cartera

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "cartera", "summary", "nacional")
	require.NoError(t, err)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return Summary{CurrentDebt: 42}, nil
	}

	var first Summary
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second Summary
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
	require.Equal(t, 42.0, second.CurrentDebt)
}

func TestCacheBumpInvalidatesKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "cartera", "summary", "nacional")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "cartera", "summary", "nacional")
	require.NoError(t, err)

	require.NotEqual(t, before, after)
}

func TestCacheNilClientPassThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)

	calls := 0
	var out Summary
	loader := func(context.Context) (any, error) {
		calls++
		return Summary{OverdueDebt: 7}, nil
	}
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 2, calls, "no backing store, loader runs every time")
	require.Equal(t, 7.0, out.OverdueDebt)
	require.NoError(t, cache.Bump(ctx))
}
