package pincache

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/angelodel80/cadmus-api/internal/part"
)

func newCache(t *testing.T) (*RedisCache, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewRedisCache(client, "", time.Minute), m
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, m := newCache(t)
	content := `{"_id":"p1","TypeId":"note","Tag":"x"}`

	_, ok, err := c.Get(ctx, content)
	require.NoError(t, err)
	require.False(t, ok)

	pins := []part.Pin{{Name: "tag", Value: "x"}}
	require.NoError(t, c.Set(ctx, content, pins))

	got, ok, err := c.Get(ctx, content)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pins, got)

	// edited content is a different key
	_, ok, err = c.Get(ctx, `{"_id":"p1","TypeId":"note","Tag":"y"}`)
	require.NoError(t, err)
	require.False(t, ok)

	require.Len(t, m.Keys(), 1)
	require.Contains(t, m.Keys()[0], defaultPrefix)

	m.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, content)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_EmptyPins(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)
	require.NoError(t, c.Set(ctx, "doc", []part.Pin{}))
	got, ok, err := c.Get(ctx, "doc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, got)
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, m := newCache(t)
	require.NoError(t, m.Set(c.key("doc"), "not json"))
	_, ok, err := c.Get(ctx, "doc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_Down(t *testing.T) {
	c, m := newCache(t)
	m.Close()
	_, _, err := c.Get(context.Background(), "doc")
	require.Error(t, err)
}
