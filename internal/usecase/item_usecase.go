package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// Actor は認証済みの操作主体。
type Actor struct {
	Username string
	Role     model.Role
}

type ItemUsecase struct {
	itemRepo repo.ItemRepository
	cache    repo.Cache
	cacheTTL time.Duration
}

// DI
func NewItemUsecase(itemRepo repo.ItemRepository, cache repo.Cache, cacheTTL time.Duration) *ItemUsecase {
	return &ItemUsecase{
		itemRepo: itemRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GET /itemsの入力DTO
type ListItemsInput struct {
	Page  int
	Limit int
}

type ItemListOutput struct {
	Items []model.Item `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *ItemUsecase) ListItems(ctx context.Context, in ListItemsInput) (ItemListOutput, error) {
	if in.Page < 1 {
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	//キャッシュを先に見る（ヒットならDBに触らない）
	key := repo.ItemsListKey(in.Page, in.Limit)
	var cached ItemListOutput
	if u.cacheLoad(ctx, key, &cached) {
		return cached, nil
	}

	items, total, err := u.itemRepo.List(ctx, repo.ItemListQuery{Page: in.Page, Limit: in.Limit})
	if err != nil {
		return ItemListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := ItemListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}
	u.cacheStore(ctx, key, out)
	return out, nil
}

func (u *ItemUsecase) GetItem(ctx context.Context, brand string) (model.Item, error) {
	brandKey := model.NormalizeBrand(brand)
	if brandKey == "" {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "invalid brand")
	}

	key := repo.ItemDetailKey(brandKey)
	var cached model.Item
	if u.cacheLoad(ctx, key, &cached) {
		return cached, nil
	}

	it, err := u.itemRepo.FindByBrandKey(ctx, brandKey)
	if err == repo.ErrNotFound {
		return model.Item{}, NewHTTPError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.cacheStore(ctx, key, it)
	return it, nil
}

func (u *ItemUsecase) SearchItems(ctx context.Context, q string) ([]model.Item, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "q required")
	}
	if len(q) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	key := repo.ItemsSearchKey(strings.ToLower(q))
	var cached []model.Item
	if u.cacheLoad(ctx, key, &cached) {
		return cached, nil
	}

	items, err := u.itemRepo.Search(ctx, q, 100)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.cacheStore(ctx, key, items)
	return items, nil
}

func (u *ItemUsecase) CountItems(ctx context.Context) (repo.ItemCounts, error) {
	var cached repo.ItemCounts
	if u.cacheLoad(ctx, repo.ItemsCountKey, &cached) {
		return cached, nil
	}

	counts, err := u.itemRepo.Counts(ctx)
	if err != nil {
		return repo.ItemCounts{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.cacheStore(ctx, repo.ItemsCountKey, counts)
	return counts, nil
}

type CreateItemInput struct {
	Brand       string
	Name        string
	Price       float64
	Quantity    int64
	Description string
}

func (u *ItemUsecase) CreateItem(ctx context.Context, actor Actor, in CreateItemInput) (model.Item, error) {
	if !actor.Role.CanManageItems() {
		return model.Item{}, NewHTTPError(http.StatusForbidden, "Users cannot create items")
	}
	brandKey := model.NormalizeBrand(in.Brand)
	if brandKey == "" {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "brand required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Quantity < 0 {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}

	//ロール別の登録上限（admin:10 / superadmin:100）
	count, err := u.itemRepo.CountByCreator(ctx, actor.Username)
	if err != nil {
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if count >= actor.Role.ItemLimit() {
		return model.Item{}, NewHTTPError(http.StatusForbidden, "Reached your limit")
	}

	it, err := u.itemRepo.Create(ctx, model.Item{
		Brand:       strings.TrimSpace(in.Brand),
		BrandKey:    brandKey,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: in.Description,
		InStock:     in.Quantity > 0,
		CreatedBy:   actor.Username,
	})
	if err == repo.ErrConflict {
		return model.Item{}, NewHTTPError(http.StatusConflict, "brand already exists")
	}
	if err != nil {
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidate(ctx, brandKey)
	return it, nil
}

type UpdateItemInput struct {
	Name        string
	Price       float64
	Quantity    int64
	Description string
}

// 更新前後の両方を返す（プレビュー付き更新）。
type UpdateItemOutput struct {
	BeforeUpdate model.Item `json:"before_update"`
	AfterUpdate  model.Item `json:"after_update"`
}

func (u *ItemUsecase) UpdateItem(ctx context.Context, actor Actor, brand string, in UpdateItemInput) (UpdateItemOutput, error) {
	if !actor.Role.CanManageItems() {
		return UpdateItemOutput{}, NewHTTPError(http.StatusForbidden, "Admins only")
	}
	brandKey := model.NormalizeBrand(brand)
	if brandKey == "" {
		return UpdateItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid brand")
	}
	if strings.TrimSpace(in.Name) == "" {
		return UpdateItemOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return UpdateItemOutput{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Quantity < 0 {
		return UpdateItemOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}

	before, err := u.itemRepo.FindByBrandKey(ctx, brandKey)
	if err == repo.ErrNotFound {
		return UpdateItemOutput{}, NewHTTPError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return UpdateItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	after := before
	after.Name = strings.TrimSpace(in.Name)
	after.Price = in.Price
	after.Quantity = in.Quantity
	after.Description = in.Description
	after.InStock = in.Quantity > 0

	if err := u.itemRepo.Update(ctx, after); err != nil {
		if err == repo.ErrNotFound {
			return UpdateItemOutput{}, NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return UpdateItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidate(ctx, brandKey)
	return UpdateItemOutput{BeforeUpdate: before, AfterUpdate: after}, nil
}

// PATCH用。指定されたフィールドだけ更新する。
type PatchItemInput struct {
	Name        *string
	Price       *float64
	Quantity    *int64
	Description *string
}

func (u *ItemUsecase) PatchItem(ctx context.Context, actor Actor, brand string, in PatchItemInput) (model.Item, error) {
	if !actor.Role.CanManageItems() {
		return model.Item{}, NewHTTPError(http.StatusForbidden, "Admins only")
	}
	brandKey := model.NormalizeBrand(brand)
	if brandKey == "" {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "invalid brand")
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return model.Item{}, NewHTTPError(http.StatusBadRequest, "name required")
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return model.Item{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		fields["price"] = *in.Price
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return model.Item{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
		}
		fields["quantity"] = *in.Quantity
		// in_stockは必ずquantityと一緒に直す
		fields["in_stock"] = *in.Quantity > 0
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if len(fields) == 0 {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	if err := u.itemRepo.UpdateFields(ctx, brandKey, fields); err != nil {
		if err == repo.ErrNotFound {
			return model.Item{}, NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidate(ctx, brandKey)

	it, err := u.itemRepo.FindByBrandKey(ctx, brandKey)
	if err != nil {
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return it, nil
}

// アーカイブ削除。消した商品のプレビューを返す。
func (u *ItemUsecase) DeleteItem(ctx context.Context, actor Actor, brand string) (model.Item, error) {
	if !actor.Role.CanManageItems() {
		return model.Item{}, NewHTTPError(http.StatusForbidden, "Admins only")
	}
	brandKey := model.NormalizeBrand(brand)
	if brandKey == "" {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "invalid brand")
	}

	it, err := u.itemRepo.FindByBrandKey(ctx, brandKey)
	if err == repo.ErrNotFound {
		return model.Item{}, NewHTTPError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.itemRepo.ArchiveDelete(ctx, brandKey); err != nil {
		if err == repo.ErrNotFound {
			return model.Item{}, NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidate(ctx, brandKey)
	return it, nil
}

// キャッシュ読み。ミス・壊れた値・失敗はすべてfalse。
func (u *ItemUsecase) cacheLoad(ctx context.Context, key string, dest interface{}) bool {
	raw, ok := u.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Warnf("cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (u *ItemUsecase) cacheStore(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warnf("cache encode %s: %v", key, err)
		return
	}
	u.cache.Set(ctx, key, string(raw), u.cacheTTL)
}

// 書き込み系は応答前に同期でキャッシュを消す。
func (u *ItemUsecase) invalidate(ctx context.Context, brandKey string) {
	u.cache.Delete(ctx, repo.ItemDetailKey(brandKey), repo.ItemsCountKey)
	u.cache.DeletePattern(ctx, repo.ItemsListPattern)
	u.cache.DeletePattern(ctx, repo.ItemsSearchPattern)
}
