package repository

import (
	"app/internal/domain/model"
	"context"
)

// 通知ログ。追記のみ。
type NotificationRepository interface {
	Append(ctx context.Context, n model.Notification) error
	ListByOwner(ctx context.Context, createdBy string, limit int) ([]model.Notification, error)
}
