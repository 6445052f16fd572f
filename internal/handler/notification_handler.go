package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 通知と販売台帳の閲覧API（admin/superadmin）
type NotificationHandler struct {
	notifications *usecase.NotificationUsecase
	purchase      *usecase.PurchaseUsecase
}

// DI
func NewNotificationHandler(notifications *usecase.NotificationUsecase, purchase *usecase.PurchaseUsecase) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, purchase: purchase}
}

// GET /notifications
func (h *NotificationHandler) List(c echo.Context) error {
	out, err := h.notifications.ListNotifications(c.Request().Context(), actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// GET /purchases
func (h *NotificationHandler) Purchases(c echo.Context) error {
	recs, err := h.purchase.ListPurchases(c.Request().Context(), actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"purchases": recs})
}
