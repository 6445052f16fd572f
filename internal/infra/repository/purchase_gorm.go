package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseGormRepository struct {
	db *gorm.DB
}

// DI
func NewPurchaseGormRepository(db *gorm.DB) *PurchaseGormRepository {
	return &PurchaseGormRepository{db: db}
}

// IncrementSold は台帳をupsertする。加算はDB側の式で行うので
// 並行購入でもカウントは失われない。
func (r *PurchaseGormRepository) IncrementSold(ctx context.Context, brandKey, brand, name string, by int64) error {
	rec := model.PurchaseRecord{
		BrandKey:     brandKey,
		Brand:        brand,
		Name:         name,
		QuantitySold: by,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "brand_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity_sold": gorm.Expr("purchase_records.quantity_sold + ?", by),
			"name":          name,
			"updated_at":    time.Now(),
		}),
	}).Create(&rec).Error
}

func (r *PurchaseGormRepository) List(ctx context.Context, limit int) ([]model.PurchaseRecord, error) {
	var recs []model.PurchaseRecord
	err := r.db.WithContext(ctx).
		Order("quantity_sold desc").Order("brand_key asc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return []model.PurchaseRecord{}, err
	}
	return recs, nil
}
