package repository

import (
	"app/internal/domain/model"
	"context"
)

// 販売台帳。加算はDB側のアトミックなインクリメントで行うこと
// （読み出してから書き戻す実装は不可）。
type PurchaseRepository interface {
	IncrementSold(ctx context.Context, brandKey, brand, name string, by int64) error
	List(ctx context.Context, limit int) ([]model.PurchaseRecord, error)
}
