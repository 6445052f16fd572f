package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cart のAPI（要認証）
type CartHandler struct {
	cart *usecase.CartUsecase
}

// DI
func NewCartHandler(cart *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cart: cart}
}

func (h *CartHandler) Get(c echo.Context) error {
	out, err := h.cart.GetCart(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

type addCartRequest struct {
	Brand    string `json:"brand"`
	Quantity int64  `json:"quantity"`
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var req addCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.cart.AddToCart(c.Request().Context(), userIDFrom(c), usecase.AddCartInput{
		Brand:    req.Brand,
		Quantity: req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	out, err := h.cart.RemoveFromCart(c.Request().Context(), userIDFrom(c), c.Param("brand"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) Checkout(c echo.Context) error {
	out, err := h.cart.Checkout(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
