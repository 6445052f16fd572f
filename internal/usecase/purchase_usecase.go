package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

// PurchaseUsecase は購入トランザクションの本体。
// 在庫減算だけが正で、台帳・通知・キャッシュ削除は減算成功後の
// ベストエフォート（失敗してもロールバックしない）。
type PurchaseUsecase struct {
	itemRepo         repo.ItemRepository
	purchaseRepo     repo.PurchaseRepository
	notificationRepo repo.NotificationRepository
	cache            repo.Cache
}

// DI
func NewPurchaseUsecase(
	itemRepo repo.ItemRepository,
	purchaseRepo repo.PurchaseRepository,
	notificationRepo repo.NotificationRepository,
	cache repo.Cache,
) *PurchaseUsecase {
	return &PurchaseUsecase{
		itemRepo:         itemRepo,
		purchaseRepo:     purchaseRepo,
		notificationRepo: notificationRepo,
		cache:            cache,
	}
}

type PurchaseOutput struct {
	Message string     `json:"msg"`
	Item    model.Item `json:"item"`
}

// Purchase は1個購入する。
// 在庫の判定と減算は条件付きUPDATE1本で行い、アプリ側では
// 読んでから書かない。UPDATEが空振りしたときだけ、存在確認で
// NotFoundかOutOfStockかを切り分ける（先に存在確認すると競合する）。
func (u *PurchaseUsecase) Purchase(ctx context.Context, brand string) (PurchaseOutput, error) {
	brandKey := model.NormalizeBrand(brand)
	if brandKey == "" {
		return PurchaseOutput{}, NewHTTPError(http.StatusBadRequest, "invalid brand")
	}

	it, err := u.itemRepo.DecrementStock(ctx, brandKey)
	if err == repo.ErrNotFound {
		//減算できなかった理由を切り分ける
		_, err := u.itemRepo.FindByBrandKey(ctx, brandKey)
		if err == repo.ErrNotFound {
			return PurchaseOutput{}, NewHTTPError(http.StatusNotFound, "Item not found")
		}
		if err != nil {
			return PurchaseOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return PurchaseOutput{}, NewHTTPError(http.StatusBadRequest, "Out of stock")
	}
	if err != nil {
		return PurchaseOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//ここから先は在庫減算が確定した後の副作用。
	//失敗はログに残すだけで、減算は取り消さない。

	if err := u.purchaseRepo.IncrementSold(ctx, brandKey, it.Brand, it.Name, 1); err != nil {
		log.Errorf("purchase ledger increment %s: %v", brandKey, err)
	}

	msg := fmt.Sprintf("%s updated stock", it.Name)
	if it.Quantity < model.LowStockThreshold {
		msg = fmt.Sprintf("%s stock is low: %d left", it.Name, it.Quantity)
	}

	if err := u.notificationRepo.Append(ctx, model.Notification{
		Brand:      it.Brand,
		Name:       it.Name,
		Quantity:   it.Quantity,
		InStock:    it.InStock,
		Message:    msg,
		CreatedBy:  it.Owner(),
		NotifiedAt: time.Now(),
	}); err != nil {
		log.Errorf("purchase notification %s: %v", brandKey, err)
	}

	//キャッシュは応答前に消す（ベストエフォート）
	u.cache.Delete(ctx, repo.ItemDetailKey(brandKey), repo.ItemsCountKey)
	u.cache.DeletePattern(ctx, repo.ItemsListPattern)
	u.cache.DeletePattern(ctx, repo.ItemsSearchPattern)

	return PurchaseOutput{
		Message: fmt.Sprintf("Purchased %s successfully", it.Name),
		Item:    it,
	}, nil
}

// 台帳の閲覧（admin/superadmin用）。
func (u *PurchaseUsecase) ListPurchases(ctx context.Context, actor Actor) ([]model.PurchaseRecord, error) {
	if !actor.Role.CanManageItems() {
		return nil, NewHTTPError(http.StatusForbidden, "Admins only")
	}
	recs, err := u.purchaseRepo.List(ctx, 100)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return recs, nil
}
