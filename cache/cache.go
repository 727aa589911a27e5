// Package cache provides a small Redis-backed JSON cache used to avoid
// repeated model calls for identical prompts and embeddings. A nil
// *Cache is valid and treats every lookup as a miss.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Standard TTL tiers.
const (
	TTLShort  = 5 * time.Minute
	TTLMedium = 30 * time.Minute
	TTLLong   = time.Hour
	TTLDay    = 24 * time.Hour
)

// Cache wraps a Redis client with JSON get/set helpers.
type Cache struct {
	client *redis.Client
}

// New connects to the Redis instance at url (redis:// form) and verifies
// the connection with a ping.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Key builds a deterministic cache key from a prefix and arguments. The
// arguments are JSON-encoded and hashed so prompts of any size produce a
// short stable key.
func Key(prefix string, args ...interface{}) string {
	payload, err := json.Marshal(args)
	if err != nil {
		payload = []byte(fmt.Sprint(args...))
	}
	sum := md5.Sum(payload)
	return prefix + ":" + hex.EncodeToString(sum[:])[:16]
}

// GetJSON fetches key and unmarshals it into dest. Returns false on a
// miss or any error; callers fall through to the real work.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key with the given TTL. Errors are dropped;
// the cache is best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, ttl)
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, key)
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
