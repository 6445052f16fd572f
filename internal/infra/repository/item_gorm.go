package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewItemGormRepository(db *gorm.DB) *ItemGormRepository {
	return &ItemGormRepository{db: db}
}

// ページング付き一覧
func (r *ItemGormRepository) List(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Item{})

	if err := tx.Count(&total).Error; err != nil {
		return []model.Item{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&items).Error; err != nil {
		return []model.Item{}, 0, err
	}

	return items, total, nil
}

// 正規化キーで1件取得
func (r *ItemGormRepository) FindByBrandKey(ctx context.Context, brandKey string) (model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).Where("brand_key = ?", brandKey).First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

// brand / name の部分一致検索（ILIKE。正規表現は使わない）
func (r *ItemGormRepository) Search(ctx context.Context, q string, limit int) ([]model.Item, error) {
	var items []model.Item
	like := "%" + q + "%"
	err := r.db.WithContext(ctx).
		Where("brand ILIKE ? OR name ILIKE ?", like, like).
		Order("brand_key asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Item{}, err
	}
	return items, nil
}

// 在庫件数の内訳
func (r *ItemGormRepository) Counts(ctx context.Context) (repo.ItemCounts, error) {
	var c repo.ItemCounts

	tx := r.db.WithContext(ctx).Model(&model.Item{})
	if err := tx.Count(&c.Total).Error; err != nil {
		return repo.ItemCounts{}, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("in_stock = ?", true).Count(&c.InStock).Error; err != nil {
		return repo.ItemCounts{}, err
	}
	c.OutOfStock = c.Total - c.InStock
	return c, nil
}

// 作成者ごとの登録数（ロール別上限の判定に使う）
func (r *ItemGormRepository) CountByCreator(ctx context.Context, username string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("created_by = ?", username).Count(&n).Error
	return n, err
}

func (r *ItemGormRepository) Create(ctx context.Context, it model.Item) (model.Item, error) {
	if err := r.db.WithContext(ctx).Create(&it).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Item{}, repo.ErrConflict
		}
		return model.Item{}, err
	}
	return it, nil
}

func (r *ItemGormRepository) Update(ctx context.Context, it model.Item) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("brand_key = ?", it.BrandKey).
		Updates(map[string]interface{}{
			"brand":       it.Brand,
			"name":        it.Name,
			"price":       it.Price,
			"quantity":    it.Quantity,
			"description": it.Description,
			"in_stock":    it.InStock,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 部分更新（PATCH用）。in_stock の整合は呼び出し側で fields に積む。
func (r *ItemGormRepository) UpdateFields(ctx context.Context, brandKey string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("brand_key = ?", brandKey).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// アーカイブ削除（gormのソフトデリート）
func (r *ItemGormRepository) ArchiveDelete(ctx context.Context, brandKey string) error {
	res := r.db.WithContext(ctx).Where("brand_key = ?", brandKey).Delete(&model.Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DecrementStock は在庫が残っているときだけ1減らす。
// ガード条件付きの1本のUPDATEなので、並行購入があっても
// 減算は在庫数ぶんしか成功しない。in_stock も同じ文で再計算する。
// RETURNINGで更新後の行を受け取る。
func (r *ItemGormRepository) DecrementStock(ctx context.Context, brandKey string) (model.Item, error) {
	var it model.Item
	res := r.db.WithContext(ctx).
		Model(&it).
		Clauses(clause.Returning{}).
		Where("brand_key = ? AND quantity > 0", brandKey).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity - 1"),
			"in_stock": gorm.Expr("quantity - 1 > 0"),
		})
	if res.Error != nil {
		return model.Item{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Item{}, repo.ErrNotFound
	}
	return it, nil
}

// postgresの一意制約違反（23505）かどうか
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
