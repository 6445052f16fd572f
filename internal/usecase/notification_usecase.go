package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// NotificationUsecase は通知ログの閲覧。
// 通知は所有者スコープ：自分が作った商品のイベントだけ見える。
type NotificationUsecase struct {
	notificationRepo repo.NotificationRepository
}

// DI
func NewNotificationUsecase(notificationRepo repo.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notificationRepo: notificationRepo}
}

type NotificationListOutput struct {
	Notifications []model.Notification `json:"notifications"`
}

func (u *NotificationUsecase) ListNotifications(ctx context.Context, actor Actor) (NotificationListOutput, error) {
	if !actor.Role.CanManageItems() {
		return NotificationListOutput{}, NewHTTPError(http.StatusForbidden, "Admins or Superadmins only")
	}

	//adminは50件、superadminは100件まで
	limit := 50
	if actor.Role == model.RoleSuperAdmin {
		limit = 100
	}

	ns, err := u.notificationRepo.ListByOwner(ctx, actor.Username, limit)
	if err != nil {
		return NotificationListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return NotificationListOutput{Notifications: ns}, nil
}
