package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

// CartUsecase は /cart の業務ロジック。
// チェックアウトは1個ずつ購入トランザクションに委譲する。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	itemRepo     repo.ItemRepository
	purchase     *PurchaseUsecase
}

// DI
func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	itemRepo repo.ItemRepository,
	purchase *PurchaseUsecase,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		itemRepo:     itemRepo,
		purchase:     purchase,
	}
}

type CartItemResponse struct {
	Brand     string  `json:"brand"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// CartResponse は明細と合計（支払い見積り）。
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

type AddCartInput struct {
	Brand    string
	Quantity int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddToCart はカートに追加（同一ブランドは数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	brandKey := model.NormalizeBrand(in.Brand)
	if brandKey == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid brand")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	it, err := u.itemRepo.FindByBrandKey(ctx, brandKey)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//既存数量との合計が現在庫を超えないかだけ見る。
	//確定時にもう一度、条件付き減算で正しく弾かれる。
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	var existingQty int64 = 0
	for _, ci := range items {
		if ci.BrandKey == brandKey {
			existingQty = ci.Quantity
			break
		}
	}
	if existingQty+in.Quantity > it.Quantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpsertByCartAndBrand(ctx, cart.ID, brandKey, it.Brand, in.Quantity, it.Price); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID string, brand string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	brandKey := model.NormalizeBrand(brand)
	if brandKey == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid brand")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByCartAndBrand(ctx, cart.ID, brandKey); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// チェックアウトの1個分の結果
type CheckoutUnitResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type CheckoutLineResult struct {
	Brand     string               `json:"brand"`
	Requested int64                `json:"requested"`
	Purchased int64                `json:"purchased"`
	Units     []CheckoutUnitResult `json:"units"`
}

type CheckoutOutput struct {
	Results []CheckoutLineResult `json:"results"`
}

// Checkout は明細ごとに「要求数ぶん1個ずつ」購入を試みる。
// あるブランドの在庫切れが他のブランドや残りの個数の試行を
// 止めることはない。カートは結果に関係なく最後に必ず空にする。
// 実際に買えた数は返り値のresultsが正。
func (u *CartUsecase) Checkout(ctx context.Context, userID string) (CheckoutOutput, error) {
	if userID == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lines, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(lines) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	results := make([]CheckoutLineResult, 0, len(lines))
	for _, line := range lines {
		lr := CheckoutLineResult{
			Brand:     line.Brand,
			Requested: line.Quantity,
			Units:     make([]CheckoutUnitResult, 0, line.Quantity),
		}
		for i := int64(0); i < line.Quantity; i++ {
			_, err := u.purchase.Purchase(ctx, line.BrandKey)
			if err != nil {
				detail := "purchase failed"
				if he, ok := AsHTTPError(err); ok {
					detail = he.Message
				}
				lr.Units = append(lr.Units, CheckoutUnitResult{OK: false, Error: detail})
				continue
			}
			lr.Purchased++
			lr.Units = append(lr.Units, CheckoutUnitResult{OK: true})
		}
		results = append(results, lr)
	}

	//結果がどうであれカートは空にする
	if err := u.cartItemRepo.ClearByCartID(ctx, cart.ID); err != nil {
		log.Errorf("cart clear %s: %v", userID, err)
	}

	return CheckoutOutput{Results: results}, nil
}

// cartIDの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total float64 = 0

	for _, ci := range items {
		it, err := u.itemRepo.FindByBrandKey(ctx, ci.BrandKey)
		if err != nil {
			continue
		}

		subtotal := ci.UnitPriceSnapshot * float64(ci.Quantity)
		respItems = append(respItems, CartItemResponse{
			Brand:     ci.Brand,
			Name:      it.Name,
			Quantity:  ci.Quantity,
			UnitPrice: ci.UnitPriceSnapshot,
			Subtotal:  subtotal,
		})
		total += subtotal
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
