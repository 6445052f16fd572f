package repository

import (
	"context"
	"fmt"
	"time"
)

// Cache は読み取り系の応答を記憶するだけの層。
// すべてベストエフォートで、失敗しても呼び出し元の正しさには影響しない。
// 実装はRedisとno-opの2つがあり、起動時に選ぶ。
type Cache interface {
	// Get はヒットしたら (値, true)。失敗・タイムアウトはミス扱い。
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	// DeletePattern は items:list:* のような前方一致の一括削除。
	DeletePattern(ctx context.Context, pattern string)
}

// キャッシュキーの組み立ては1箇所に集める。
// 書き込み系はDetailKey＋CountKeyと各パターンを応答前に消す。
const (
	ItemsCountKey      = "items:count"
	ItemsListPattern   = "items:list:*"
	ItemsSearchPattern = "items:search:*"
)

func ItemsListKey(page, limit int) string {
	return fmt.Sprintf("items:list:%d:%d", page, limit)
}

func ItemDetailKey(brandKey string) string {
	return "items:detail:" + brandKey
}

func ItemsSearchKey(q string) string {
	return "items:search:" + q
}
