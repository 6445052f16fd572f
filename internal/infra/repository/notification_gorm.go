package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type NotificationGormRepository struct {
	db *gorm.DB
}

// DI
func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

// 追記のみ。既存行の更新はしない。
func (r *NotificationGormRepository) Append(ctx context.Context, n model.Notification) error {
	return r.db.WithContext(ctx).Create(&n).Error
}

func (r *NotificationGormRepository) ListByOwner(ctx context.Context, createdBy string, limit int) ([]model.Notification, error) {
	var ns []model.Notification
	err := r.db.WithContext(ctx).
		Where("created_by = ?", createdBy).
		Order("notified_at desc").Order("id desc").
		Limit(limit).
		Find(&ns).Error
	if err != nil {
		return []model.Notification{}, err
	}
	return ns, nil
}
