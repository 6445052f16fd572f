package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNotificationUsecase_List_ForbiddenForUserRole(t *testing.T) {
	uc := usecase.NewNotificationUsecase(new(NotificationRepoMock))

	_, err := uc.ListNotifications(context.Background(), usecase.Actor{Username: "bob", Role: model.RoleUser})
	assertStatus(t, err, http.StatusForbidden)
}

func TestNotificationUsecase_List_OwnerScopedWithRoleLimit(t *testing.T) {
	nRepo := new(NotificationRepoMock)
	uc := usecase.NewNotificationUsecase(nRepo)

	ns := []model.Notification{{Brand: "Acme", Message: "Sneaker updated stock", CreatedBy: "alice"}}
	//adminは自分の商品のイベントだけ、50件まで
	nRepo.On("ListByOwner", mock.Anything, "alice", 50).Return(ns, nil)

	out, err := uc.ListNotifications(context.Background(), usecase.Actor{Username: "alice", Role: model.RoleAdmin})
	assert.NoError(t, err)
	assert.Equal(t, ns, out.Notifications)
	nRepo.AssertExpectations(t)
}

func TestNotificationUsecase_List_SuperAdminLimit(t *testing.T) {
	nRepo := new(NotificationRepoMock)
	uc := usecase.NewNotificationUsecase(nRepo)

	nRepo.On("ListByOwner", mock.Anything, "root", 100).Return([]model.Notification{}, nil)

	_, err := uc.ListNotifications(context.Background(), usecase.Actor{Username: "root", Role: model.RoleSuperAdmin})
	assert.NoError(t, err)
	nRepo.AssertExpectations(t)
}
