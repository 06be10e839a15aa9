package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisRowCache implements RowCache on Redis so every instance shares fetched rows
type RedisRowCache struct {
	client *redis.Client
}

// NewRedisRowCache connects to Redis and pings it
func NewRedisRowCache(ctx context.Context, cfg config.RedisConfig) (*RedisRowCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   2,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisRowCache{client: client}, nil
}

// NewRedisRowCacheWithClient wraps an existing client
func NewRedisRowCacheWithClient(client *redis.Client) *RedisRowCache {
	return &RedisRowCache{client: client}
}

func (c *RedisRowCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached rows: %w", err)
	}
	return b, true, nil
}

func (c *RedisRowCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache rows: %w", err)
	}
	return nil
}

// DeleteEntity scans the entity's keys and unlinks them in batches
func (c *RedisRowCache) DeleteEntity(ctx context.Context, entityID string) error {
	iter := c.client.Scan(ctx, 0, entityPrefix(entityID)+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := c.client.Unlink(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return fmt.Errorf("invalidate %s: %w", entityID, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", entityID, err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("invalidate %s: %w", entityID, err)
	}
	return nil
}

func (c *RedisRowCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client
func (c *RedisRowCache) GetClient() *redis.Client {
	return c.client
}

var _ RowCache = (*RedisRowCache)(nil)
