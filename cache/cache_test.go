package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client), mr
}

func TestKeyDeterministic(t *testing.T) {
	k1 := Key("llm", "prompt", 0.7)
	k2 := Key("llm", "prompt", 0.7)
	k3 := Key("llm", "prompt", 0.3)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, len("llm:")+16)
}

func TestGetSetJSON(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Topic string `json:"topic"`
		Score int    `json:"score"`
	}

	key := Key("test", "roundtrip")
	var miss payload
	require.False(t, c.GetJSON(ctx, key, &miss))

	c.SetJSON(ctx, key, payload{Topic: "go generics", Score: 8}, TTLShort)

	var hit payload
	require.True(t, c.GetJSON(ctx, key, &hit))
	assert.Equal(t, "go generics", hit.Topic)
	assert.Equal(t, 8, hit.Score)
}

func TestTTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	key := Key("test", "expiry")
	c.SetJSON(ctx, key, "value", time.Minute)

	var got string
	require.True(t, c.GetJSON(ctx, key, &got))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.GetJSON(ctx, key, &got))
}

func TestNilCacheIsMiss(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var got string
	assert.False(t, c.GetJSON(ctx, "any", &got))
	c.SetJSON(ctx, "any", "value", TTLShort) // must not panic
	assert.NoError(t, c.Close())
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key := Key("test", "delete")
	c.SetJSON(ctx, key, 42, TTLLong)
	c.Delete(ctx, key)

	var got int
	assert.False(t, c.GetJSON(ctx, key, &got))
}
