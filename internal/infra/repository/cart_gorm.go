package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// カート取得（無ければ作る）
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID string) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Where(model.Cart{UserID: userID}).
		FirstOrCreate(&cart).Error
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

// 同一ブランドは数量加算。価格スナップショットは追加時点の値で更新する。
func (r *CartItemGormRepository) UpsertByCartAndBrand(ctx context.Context, cartID int64, brandKey, brand string, qty int64, unitPrice float64) error {
	item := model.CartItem{
		CartID:            cartID,
		BrandKey:          brandKey,
		Brand:             brand,
		Quantity:          qty,
		UnitPriceSnapshot: unitPrice,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "brand_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":            gorm.Expr("cart_items.quantity + ?", qty),
			"unit_price_snapshot": unitPrice,
		}),
	}).Create(&item).Error
}

func (r *CartItemGormRepository) DeleteByCartAndBrand(ctx context.Context, cartID int64, brandKey string) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND brand_key = ?", cartID, brandKey).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// チェックアウト後の全消し。結果に関わらず必ず呼ばれる。
func (r *CartItemGormRepository) ClearByCartID(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
