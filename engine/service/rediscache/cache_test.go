package rediscache_test

import (
	"context"
	"testing"
	"time"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/service"
	"github.com/1siamBot/rrt-engine/engine/service/rediscache"
	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, opts ...rediscache.Option) (*rediscache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	c := rediscache.NewFromClient(client, opts...)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	_, hit, err := c.Get(ctx, "room:1")
	require.NoError(t, err)
	assert.False(t, hit)

	resp := &service.PlanResponse{Scene: "room", Path: []geom.Vec2{{X: 0, Y: 0}, {X: 3, Y: 4}}, Length: 5, Nodes: 2, Reached: true}
	require.NoError(t, c.Put(ctx, "room:1", resp))
	assert.True(t, mr.Exists("rrt:plan:room:1"))

	got, hit, err := c.Get(ctx, "room:1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, resp, got)
}

func TestCacheTTLAndPrefix(t *testing.T) {
	c, mr := newCache(t, rediscache.WithTTL(time.Minute), rediscache.WithPrefix("test:"))
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "k", &service.PlanResponse{Scene: "room"}))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	mr.FastForward(2 * time.Minute)
	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheCorruptValue(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("rrt:plan:bad", "not json"))
	_, _, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
}
