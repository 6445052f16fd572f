package handler

import (
	"net/http"
	"strconv"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 認証済みコンテキストから操作主体を取り出す。
func actorFrom(c echo.Context) usecase.Actor {
	username, _ := c.Get(middleware.CtxUsernameKey).(string)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return usecase.Actor{Username: username, Role: model.Role(role)}
}

func userIDFrom(c echo.Context) string {
	id, _ := c.Get(middleware.CtxUserIDKey).(string)
	return id
}

// /items の公開API（閲覧と購入）
type ItemHandler struct {
	items    *usecase.ItemUsecase
	purchase *usecase.PurchaseUsecase
}

// DI
func NewItemHandler(items *usecase.ItemUsecase, purchase *usecase.PurchaseUsecase) *ItemHandler {
	return &ItemHandler{items: items, purchase: purchase}
}

func (h *ItemHandler) List(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 100）
	limit := 100
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.items.ListItems(c.Request().Context(), usecase.ListItemsInput{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) Detail(c echo.Context) error {
	it, err := h.items.GetItem(c.Request().Context(), c.Param("brand"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, it)
}

func (h *ItemHandler) Search(c echo.Context) error {
	items, err := h.items.SearchItems(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

func (h *ItemHandler) Count(c echo.Context) error {
	counts, err := h.items.CountItems(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, counts)
}

// POST /items/buy/:brand（購入は未認証で可能）
func (h *ItemHandler) Buy(c echo.Context) error {
	out, err := h.purchase.Purchase(c.Request().Context(), c.Param("brand"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
