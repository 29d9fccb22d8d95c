package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Total string `json:"total"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestVersionInitialisesAndBumps(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	ver, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)

	require.NoError(t, c.Bump(ctx))
	ver, err = c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)
}

func TestBuildKeyEmbedsVersion(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "tb", "ADMIN:")
	require.NoError(t, err)
	assert.Equal(t, "tb:ADMIN::v1", key)

	require.NoError(t, c.Bump(ctx))
	key, err = c.BuildKey(ctx, "tb", "ADMIN:")
	require.NoError(t, err)
	assert.Equal(t, "tb:ADMIN::v2", key)
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	var calls int32
	loader := func(context.Context) (any, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return report{Total: "100.00"}, nil
		}
		return report{Total: "250.00"}, nil
	}

	key, err := c.BuildKey(ctx, "tb")
	require.NoError(t, err)
	var first report
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	var second report
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, "100.00", second.Total)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	require.NoError(t, c.Bump(ctx))
	key, err = c.BuildKey(ctx, "tb")
	require.NoError(t, err)
	var third report
	require.NoError(t, c.FetchJSON(ctx, key, &third, loader))
	assert.Equal(t, "250.00", third.Total)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchJSONSharesConcurrentMisses(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return report{Total: "1.00"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out report
			assert.NoError(t, c.FetchJSON(ctx, "shared", &out, loader))
			assert.Equal(t, "1.00", out.Total)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestFetchJSONPropagatesLoaderError(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")
	var out report
	err := c.FetchJSON(context.Background(), "failing", &out, func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("failing"))
}

func TestNilCacheIsPassThrough(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)
	assert.NoError(t, c.Bump(ctx))

	var out report
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return report{Total: "3.00"}, nil
	}))
	assert.Equal(t, "3.00", out.Total)
}
