package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /items の管理API（admin/superadmin）
type AdminItemHandler struct {
	items *usecase.ItemUsecase
}

// DI
func NewAdminItemHandler(items *usecase.ItemUsecase) *AdminItemHandler {
	return &AdminItemHandler{items: items}
}

type createItemRequest struct {
	Brand       string  `json:"brand"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Description string  `json:"description"`
}

func (h *AdminItemHandler) Create(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	it, err := h.items.CreateItem(c.Request().Context(), actorFrom(c), usecase.CreateItemInput{
		Brand:       req.Brand,
		Name:        req.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, it)
}

type updateItemRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Description string  `json:"description"`
}

func (h *AdminItemHandler) Update(c echo.Context) error {
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.items.UpdateItem(c.Request().Context(), actorFrom(c), c.Param("brand"), usecase.UpdateItemInput{
		Name:        req.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"msg":           "Item updated successfully",
		"before_update": out.BeforeUpdate,
		"after_update":  out.AfterUpdate,
	})
}

type patchItemRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Quantity    *int64   `json:"quantity"`
	Description *string  `json:"description"`
}

func (h *AdminItemHandler) Patch(c echo.Context) error {
	var req patchItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	it, err := h.items.PatchItem(c.Request().Context(), actorFrom(c), c.Param("brand"), usecase.PatchItemInput{
		Name:        req.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, it)
}

func (h *AdminItemHandler) Delete(c echo.Context) error {
	it, err := h.items.DeleteItem(c.Request().Context(), actorFrom(c), c.Param("brand"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"msg":          "Item deleted successfully",
		"deleted_item": it,
	})
}
