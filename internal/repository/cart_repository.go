package repository

import (
	"app/internal/domain/model"
	"context"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID string) (model.Cart, error)
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一ブランドは数量加算
	UpsertByCartAndBrand(ctx context.Context, cartID int64, brandKey, brand string, qty int64, unitPrice float64) error
	DeleteByCartAndBrand(ctx context.Context, cartID int64, brandKey string) error
	ClearByCartID(ctx context.Context, cartID int64) error
}
