package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// 一覧検索
type ItemListQuery struct {
	Page  int
	Limit int
}

// 在庫件数の内訳
type ItemCounts struct {
	Total      int64 `json:"total_items"`
	InStock    int64 `json:"in_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

// 商品の永続化だけを約束。検索はすべて正規化キー（小文字）で行う。
type ItemRepository interface {
	List(ctx context.Context, q ItemListQuery) ([]model.Item, int64, error)
	FindByBrandKey(ctx context.Context, brandKey string) (model.Item, error)
	Search(ctx context.Context, q string, limit int) ([]model.Item, error)
	Counts(ctx context.Context) (ItemCounts, error)
	CountByCreator(ctx context.Context, username string) (int64, error)

	Create(ctx context.Context, it model.Item) (model.Item, error)
	Update(ctx context.Context, it model.Item) error
	UpdateFields(ctx context.Context, brandKey string, fields map[string]interface{}) error
	ArchiveDelete(ctx context.Context, brandKey string) error

	// DecrementStock は quantity > 0 のときだけ在庫を1減らし、
	// 更新後の商品を返す。条件を満たさなければ ErrNotFound。
	// 減算と in_stock の再計算は1つの条件付きUPDATEで行う。
	DecrementStock(ctx context.Context, brandKey string) (model.Item, error)
}
