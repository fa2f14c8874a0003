package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, 5*time.Minute), mr
}

type payload struct {
	Value string `json:"value"`
}

func TestCacheFetchJSON(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "ledger", "tb", "1", "all")
	require.NoError(t, err)
	assert.Equal(t, "ledger:tb:1:all:1", key)

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return payload{Value: "fresh"}, nil
	}

	var first payload
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	assert.Equal(t, "fresh", first.Value)
	assert.Equal(t, 1, calls)

	// Second fetch is served from Redis without touching the loader.
	var second payload
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, "fresh", second.Value)
	assert.Equal(t, 1, calls)
}

func TestCacheLoaderErrorNotCached(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	boom := errors.New("pg down")
	err := cache.FetchJSON(ctx, "ledger:tb:1:all:1", &payload{}, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	var out payload
	require.NoError(t, cache.FetchJSON(ctx, "ledger:tb:1:all:1", &out, func(context.Context) (interface{}, error) {
		return payload{Value: "recovered"}, nil
	}))
	assert.Equal(t, "recovered", out.Value)
}

func TestCacheBumpChangesKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "ledger", "bs", "1", "all")
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, "ledger", "bs", "1", "all")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, ver)
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	key := "ledger:pl:1:2026-01-01:2026-01-31:1"
	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return payload{Value: "v"}, nil
	}
	require.NoError(t, cache.FetchJSON(ctx, key, &payload{}, loader))

	mr.FastForward(6 * time.Minute)

	require.NoError(t, cache.FetchJSON(ctx, key, &payload{}, loader))
	assert.Equal(t, 2, calls)
}

func TestCacheDisabled(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "ledger", "tb", "1", "all")
	require.NoError(t, err)
	assert.Equal(t, "ledger:tb:1:all", key)

	var out payload
	require.NoError(t, cache.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) {
		return payload{Value: "direct"}, nil
	}))
	assert.Equal(t, "direct", out.Value)
	require.NoError(t, cache.Bump(ctx))
}

func TestCacheKeyHelpers(t *testing.T) {
	assert.Equal(t, "ledger:tb:42:2026-01-31", keyTrialBalance(42, "2026-01-31"))
	assert.Equal(t, "ledger:pl:42:2026-01-01:2026-01-31", keyIncomeStatement(42, "2026-01-01", "2026-01-31"))
	assert.Equal(t, "ledger:bs:42:all", keyBalanceSheet(42, "all"))
}
