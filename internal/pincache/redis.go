// Package pincache keeps computed part pins in Redis. Entries are keyed by a
// hash of the stored part content, so an edited part can never hit a stale
// entry; the TTL only bounds memory.
package pincache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelodel80/cadmus-api/internal/part"
)

const defaultPrefix = "pins:v1:"

// RedisCache implements the item service's PinCache.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a pin cache. Prefix may be empty; ttl <= 0 means one hour.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) key(content string) string {
	sum := sha256.Sum256([]byte(content))
	return r.prefix + hex.EncodeToString(sum[:])
}

func (r *RedisCache) Get(ctx context.Context, content string) ([]part.Pin, bool, error) {
	b, err := r.client.Get(ctx, r.key(content)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var pins []part.Pin
	if err := json.Unmarshal(b, &pins); err != nil {
		// a corrupt entry is a miss; the caller overwrites it
		return nil, false, nil
	}
	return pins, true, nil
}

func (r *RedisCache) Set(ctx context.Context, content string, pins []part.Pin) error {
	b, err := json.Marshal(pins)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(content), b, r.ttl).Err()
}
