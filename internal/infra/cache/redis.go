package cache

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

// キャッシュ操作1回あたりの上限。超えたらミス扱いで本体処理へ進む。
const opTimeout = 200 * time.Millisecond

// Connect はRedisに接続してpingを確認する。
func Connect(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// RedisCache はrepository.Cacheの本実装。
// 失敗はすべてログに残してミス/no-op扱いにする。
type RedisCache struct {
	client *redis.Client
}

// DI
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Warnf("cache get %s: %v", key, err)
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Warnf("cache set %s: %v", key, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warnf("cache delete %v: %v", keys, err)
	}
}

// SCANで集めてまとめて消す。KEYSは使わない。
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warnf("cache scan %s: %v", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warnf("cache delete pattern %s: %v", pattern, err)
	}
}
