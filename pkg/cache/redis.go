package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	lerrors "github.com/matzehuels/lattice/pkg/errors"
)

// RedisCache stores entries in Redis under a key prefix. Expiry uses Redis
// TTLs.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	backoff Backoff
}

// NewRedisCache connects to addr and checks the connection.
func NewRedisCache(ctx context.Context, addr, prefix string) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	c := &RedisCache{client: client, prefix: prefix, backoff: DefaultBackoff}
	if err := c.backoff.Retry(ctx, func() error { return transient(client.Ping(ctx).Err()) }); err != nil {
		client.Close()
		return nil, lerrors.Wrap(lerrors.ErrCodeCache, errors.Join(ErrUnavailable, err), "connect to redis at %s", addr)
	}
	return c, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.backoff.Retry(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return transient(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, lerrors.Wrap(lerrors.ErrCodeCache, err, "redis get")
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.backoff.Retry(ctx, func() error {
		return transient(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
	if err != nil {
		return lerrors.Wrap(lerrors.ErrCodeCache, err, "redis set")
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeCache, err, "redis delete")
	}
	return nil
}

// Clear deletes every key under the cache's prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 256).Iterator()
	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := c.client.Del(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 256 {
			if err := flush(); err != nil {
				return lerrors.Wrap(lerrors.ErrCodeCache, err, "redis clear")
			}
		}
	}
	if err := iter.Err(); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeCache, err, "redis scan")
	}
	if err := flush(); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeCache, err, "redis clear")
	}
	return nil
}

func (c *RedisCache) Close() error { return c.client.Close() }

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
