package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// Cache is a JSON read-through cache on top of Redis. A nil *Cache or a Cache
// without a client is valid and behaves as a permanent miss.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCache(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Get decodes the cached value into dst. Returns false on miss or any error.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *Cache) Set(ctx context.Context, key string, v interface{}) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, data, c.ttl).Err()
}

// Flush deletes every key under the cache prefix.
func (c *Cache) Flush(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
