package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"
	mw "app/internal/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Item         *handler.ItemHandler
	AdminItem    *handler.AdminItemHandler
	Cart         *handler.CartHandler
	Notification *handler.NotificationHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/auth/users", h.Auth.Register)
	e.POST("/auth/token", h.Auth.Login)

	//公開（閲覧と購入は未認証で可能）
	e.GET("/items", h.Item.List)
	e.GET("/items/count", h.Item.Count)
	e.GET("/items/search", h.Item.Search)
	e.GET("/items/:brand", h.Item.Detail)
	e.POST("/items/buy/:brand", h.Item.Buy)

	//要認証
	authed := e.Group("", mw.AuthJWT(cfg))
	authed.GET("/cart", h.Cart.Get)
	authed.POST("/cart/items", h.Cart.AddItem)
	authed.DELETE("/cart/items/:brand", h.Cart.RemoveItem)
	authed.POST("/cart/checkout", h.Cart.Checkout)

	//admin/superadminのみ
	admin := e.Group("", mw.AuthJWT(cfg), mw.AdminRoleGuard())
	admin.POST("/items", h.AdminItem.Create)
	admin.PUT("/items/:brand", h.AdminItem.Update)
	admin.PATCH("/items/:brand", h.AdminItem.Patch)
	admin.DELETE("/items/:brand", h.AdminItem.Delete)
	admin.GET("/notifications", h.Notification.List)
	admin.GET("/purchases", h.Notification.Purchases)
}
