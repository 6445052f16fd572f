package usecase_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ItemRepoMock struct{ mock.Mock }

func (m *ItemRepoMock) List(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ItemRepoMock) FindByBrandKey(ctx context.Context, brandKey string) (model.Item, error) {
	args := m.Called(ctx, brandKey)
	it, _ := args.Get(0).(model.Item)
	return it, args.Error(1)
}

func (m *ItemRepoMock) Search(ctx context.Context, q string, limit int) ([]model.Item, error) {
	args := m.Called(ctx, q, limit)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Error(1)
}

func (m *ItemRepoMock) Counts(ctx context.Context) (repo.ItemCounts, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(repo.ItemCounts)
	return c, args.Error(1)
}

func (m *ItemRepoMock) CountByCreator(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ItemRepoMock) Create(ctx context.Context, it model.Item) (model.Item, error) {
	args := m.Called(ctx, it)
	created, _ := args.Get(0).(model.Item)
	return created, args.Error(1)
}

func (m *ItemRepoMock) Update(ctx context.Context, it model.Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *ItemRepoMock) UpdateFields(ctx context.Context, brandKey string, fields map[string]interface{}) error {
	args := m.Called(ctx, brandKey, fields)
	return args.Error(0)
}

func (m *ItemRepoMock) ArchiveDelete(ctx context.Context, brandKey string) error {
	args := m.Called(ctx, brandKey)
	return args.Error(0)
}

func (m *ItemRepoMock) DecrementStock(ctx context.Context, brandKey string) (model.Item, error) {
	args := m.Called(ctx, brandKey)
	it, _ := args.Get(0).(model.Item)
	return it, args.Error(1)
}

type PurchaseRepoMock struct{ mock.Mock }

func (m *PurchaseRepoMock) IncrementSold(ctx context.Context, brandKey, brand, name string, by int64) error {
	args := m.Called(ctx, brandKey, brand, name, by)
	return args.Error(0)
}

func (m *PurchaseRepoMock) List(ctx context.Context, limit int) ([]model.PurchaseRecord, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]model.PurchaseRecord)
	return recs, args.Error(1)
}

type NotificationRepoMock struct{ mock.Mock }

func (m *NotificationRepoMock) Append(ctx context.Context, n model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepoMock) ListByOwner(ctx context.Context, createdBy string, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, createdBy, limit)
	ns, _ := args.Get(0).([]model.Notification)
	return ns, args.Error(1)
}

// CacheStub は呼ばれた内容を記録するだけのキャッシュ。
type CacheStub struct {
	mu       sync.Mutex
	store    map[string]string
	deleted  []string
	patterns []string
}

func NewCacheStub() *CacheStub {
	return &CacheStub{store: map[string]string{}}
}

func (c *CacheStub) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	return v, ok
}

func (c *CacheStub) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}

func (c *CacheStub) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.store, k)
		c.deleted = append(c.deleted, k)
	}
}

func (c *CacheStub) DeletePattern(ctx context.Context, pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
}

func (c *CacheStub) DeletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.deleted))
	copy(out, c.deleted)
	return out
}

// fakeItemStore はDBの条件付きUPDATEと同じ決め方をする
// インメモリ実装。並行性のプロパティ確認に使う。
type fakeItemStore struct {
	mu    sync.Mutex
	items map[string]model.Item
}

func newFakeItemStore(items ...model.Item) *fakeItemStore {
	s := &fakeItemStore{items: map[string]model.Item{}}
	for _, it := range items {
		s.items[it.BrandKey] = it
	}
	return s
}

func (s *fakeItemStore) List(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	return nil, 0, nil
}

func (s *fakeItemStore) FindByBrandKey(ctx context.Context, brandKey string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[brandKey]
	if !ok {
		return model.Item{}, repo.ErrNotFound
	}
	return it, nil
}

func (s *fakeItemStore) Search(ctx context.Context, q string, limit int) ([]model.Item, error) {
	return nil, nil
}

func (s *fakeItemStore) Counts(ctx context.Context) (repo.ItemCounts, error) {
	return repo.ItemCounts{}, nil
}

func (s *fakeItemStore) CountByCreator(ctx context.Context, username string) (int64, error) {
	return 0, nil
}

func (s *fakeItemStore) Create(ctx context.Context, it model.Item) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.BrandKey] = it
	return it, nil
}

func (s *fakeItemStore) Update(ctx context.Context, it model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.BrandKey] = it
	return nil
}

func (s *fakeItemStore) UpdateFields(ctx context.Context, brandKey string, fields map[string]interface{}) error {
	return nil
}

func (s *fakeItemStore) ArchiveDelete(ctx context.Context, brandKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, brandKey)
	return nil
}

// ガード条件（quantity > 0）つきの減算。DBの条件付きUPDATE相当。
func (s *fakeItemStore) DecrementStock(ctx context.Context, brandKey string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[brandKey]
	if !ok || it.Quantity <= 0 {
		return model.Item{}, repo.ErrNotFound
	}
	it.Quantity--
	it.InStock = it.Quantity > 0
	s.items[brandKey] = it
	return it, nil
}

// =====================
// Purchase
// =====================

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}

func newPurchaseUsecase(items repo.ItemRepository) (*usecase.PurchaseUsecase, *PurchaseRepoMock, *NotificationRepoMock, *CacheStub) {
	pRepo := new(PurchaseRepoMock)
	nRepo := new(NotificationRepoMock)
	c := NewCacheStub()
	return usecase.NewPurchaseUsecase(items, pRepo, nRepo, c), pRepo, nRepo, c
}

func TestPurchaseUsecase_Purchase_InvalidBrand(t *testing.T) {
	uc, _, _, _ := newPurchaseUsecase(new(ItemRepoMock))

	_, err := uc.Purchase(context.Background(), "   ")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestPurchaseUsecase_Purchase_NotFound(t *testing.T) {
	iRepo := new(ItemRepoMock)
	uc, _, _, _ := newPurchaseUsecase(iRepo)

	iRepo.On("DecrementStock", mock.Anything, "ghost").Return(model.Item{}, repo.ErrNotFound)
	iRepo.On("FindByBrandKey", mock.Anything, "ghost").Return(model.Item{}, repo.ErrNotFound)

	_, err := uc.Purchase(context.Background(), "ghost")
	assertStatus(t, err, http.StatusNotFound)
	iRepo.AssertExpectations(t)
}

func TestPurchaseUsecase_Purchase_OutOfStock(t *testing.T) {
	iRepo := new(ItemRepoMock)
	uc, _, _, _ := newPurchaseUsecase(iRepo)

	//減算の空振りの後にだけ存在確認をする
	iRepo.On("DecrementStock", mock.Anything, "acme").Return(model.Item{}, repo.ErrNotFound)
	iRepo.On("FindByBrandKey", mock.Anything, "acme").Return(model.Item{BrandKey: "acme", Quantity: 0}, nil)

	_, err := uc.Purchase(context.Background(), "acme")
	assertStatus(t, err, http.StatusBadRequest)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, "Out of stock", he.Message)
}

func TestPurchaseUsecase_Purchase_Success_LowStock(t *testing.T) {
	iRepo := new(ItemRepoMock)
	uc, pRepo, nRepo, c := newPurchaseUsecase(iRepo)

	updated := model.Item{
		Brand:     "Acme",
		BrandKey:  "acme",
		Name:      "Sneaker",
		Quantity:  0,
		InStock:   false,
		CreatedBy: "alice",
	}
	iRepo.On("DecrementStock", mock.Anything, "acme").Return(updated, nil)
	pRepo.On("IncrementSold", mock.Anything, "acme", "Acme", "Sneaker", int64(1)).Return(nil)
	nRepo.On("Append", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
		return n.Message == "Sneaker stock is low: 0 left" &&
			n.CreatedBy == "alice" &&
			n.Quantity == 0 &&
			!n.InStock
	})).Return(nil)

	out, err := uc.Purchase(context.Background(), "ACME") //大文字でも同じ商品
	assert.NoError(t, err)
	assert.Equal(t, "Purchased Sneaker successfully", out.Message)
	assert.Equal(t, int64(0), out.Item.Quantity)
	assert.False(t, out.Item.InStock)

	//応答前にキャッシュが消えている
	assert.Contains(t, c.DeletedKeys(), repo.ItemDetailKey("acme"))
	assert.Contains(t, c.DeletedKeys(), repo.ItemsCountKey)

	iRepo.AssertExpectations(t)
	pRepo.AssertExpectations(t)
	nRepo.AssertExpectations(t)
}

func TestPurchaseUsecase_Purchase_Success_NormalStock(t *testing.T) {
	iRepo := new(ItemRepoMock)
	uc, pRepo, nRepo, _ := newPurchaseUsecase(iRepo)

	updated := model.Item{Brand: "Acme", BrandKey: "acme", Name: "Sneaker", Quantity: 5, InStock: true}
	iRepo.On("DecrementStock", mock.Anything, "acme").Return(updated, nil)
	pRepo.On("IncrementSold", mock.Anything, "acme", "Acme", "Sneaker", int64(1)).Return(nil)
	nRepo.On("Append", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
		//所有者が無い商品はsystem扱い
		return n.Message == "Sneaker updated stock" && n.CreatedBy == "system"
	})).Return(nil)

	out, err := uc.Purchase(context.Background(), "acme")
	assert.NoError(t, err)
	assert.Equal(t, int64(5), out.Item.Quantity)
	nRepo.AssertExpectations(t)
}

func TestPurchaseUsecase_Purchase_SideEffectFailuresAreSwallowed(t *testing.T) {
	iRepo := new(ItemRepoMock)
	uc, pRepo, nRepo, _ := newPurchaseUsecase(iRepo)

	updated := model.Item{Brand: "Acme", BrandKey: "acme", Name: "Sneaker", Quantity: 1, InStock: true}
	iRepo.On("DecrementStock", mock.Anything, "acme").Return(updated, nil)
	pRepo.On("IncrementSold", mock.Anything, "acme", "Acme", "Sneaker", int64(1)).Return(assert.AnError)
	nRepo.On("Append", mock.Anything, mock.Anything).Return(assert.AnError)

	//台帳と通知が失敗しても購入は成功扱い（在庫減算が正）
	out, err := uc.Purchase(context.Background(), "acme")
	assert.NoError(t, err)
	assert.Equal(t, "Purchased Sneaker successfully", out.Message)
}

func TestPurchaseUsecase_Concurrent_NoOversell(t *testing.T) {
	const stock = 10
	const buyers = 50

	store := newFakeItemStore(model.Item{
		Brand:    "Acme",
		BrandKey: "acme",
		Name:     "Sneaker",
		Quantity: stock,
		InStock:  true,
	})
	uc, pRepo, nRepo, _ := newPurchaseUsecase(store)
	pRepo.On("IncrementSold", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	nRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	var ok, outOfStock int64
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Purchase(context.Background(), "acme")
			if err == nil {
				atomic.AddInt64(&ok, 1)
				return
			}
			if he, isHTTP := usecase.AsHTTPError(err); isHTTP && he.Message == "Out of stock" {
				atomic.AddInt64(&outOfStock, 1)
			}
		}()
	}
	wg.Wait()

	//在庫数ちょうどしか成功しない（取りこぼしも売り過ぎも無い）
	assert.Equal(t, int64(stock), ok)
	assert.Equal(t, int64(buyers-stock), outOfStock)

	final, err := store.FindByBrandKey(context.Background(), "acme")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), final.Quantity)
	assert.False(t, final.InStock)
}

func TestPurchaseUsecase_ListPurchases_Forbidden(t *testing.T) {
	uc, _, _, _ := newPurchaseUsecase(new(ItemRepoMock))

	_, err := uc.ListPurchases(context.Background(), usecase.Actor{Username: "bob", Role: model.RoleUser})
	assertStatus(t, err, http.StatusForbidden)
}

func TestPurchaseUsecase_ListPurchases_Success(t *testing.T) {
	uc, pRepo, _, _ := newPurchaseUsecase(new(ItemRepoMock))

	recs := []model.PurchaseRecord{{Brand: "Acme", BrandKey: "acme", Name: "Sneaker", QuantitySold: 3}}
	pRepo.On("List", mock.Anything, 100).Return(recs, nil)

	out, err := uc.ListPurchases(context.Background(), usecase.Actor{Username: "root", Role: model.RoleSuperAdmin})
	assert.NoError(t, err)
	assert.Equal(t, recs, out)
	pRepo.AssertExpectations(t)
}
