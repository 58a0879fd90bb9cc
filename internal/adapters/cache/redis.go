package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/go-redis/redis/v8"
)

const redisDriver = "redis"

// RedisCache реализация CachePort поверх Redis. Все ключи получают общий префикс.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedisCache подключается к Redis и проверяет соединение
func NewRedisCache(ctx context.Context, host string, port int, password string, db int, prefix string, defaultTTL time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheWithClient(client, prefix, defaultTTL), nil
}

// NewRedisCacheWithClient оборачивает готовый клиент
func NewRedisCacheWithClient(client *redis.Client, prefix string, defaultTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

func (r *RedisCache) buildKey(key string) string {
	return r.prefix + key
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, observe(redisDriver, "get", interfaces.ErrCacheMiss)
		}
		return nil, observe(redisDriver, "get", err)
	}
	return val, observe(redisDriver, "get", nil)
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration == 0 {
		expiration = r.defaultTTL
	}
	return observe(redisDriver, "set", r.client.Set(ctx, r.buildKey(key), value, expiration).Err())
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return observe(redisDriver, "delete", r.client.Del(ctx, r.buildKey(key)).Err())
}

// DeleteByPattern удаляет ключи пачками по 100, перебирая их через SCAN
func (r *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return observe(redisDriver, "delete_pattern", r.deleteByPattern(ctx, r.buildKey(pattern)))
}

func (r *RedisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			keys = keys[:0]
		}
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete remaining cache keys: %w", err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
