package cache

import (
	"context"
	"time"
)

// NoopCache はキャッシュ無し構成用。常にミスで、書き込みは捨てる。
// 呼び出し側は「キャッシュが有るかどうか」で分岐しない。
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (*NoopCache) Get(ctx context.Context, key string) (string, bool) { return "", false }

func (*NoopCache) Set(ctx context.Context, key, value string, ttl time.Duration) {}

func (*NoopCache) Delete(ctx context.Context, keys ...string) {}

func (*NoopCache) DeletePattern(ctx context.Context, pattern string) {}
