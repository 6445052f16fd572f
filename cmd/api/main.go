package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	repo "app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID, username string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"role":     string(role),
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// キャッシュの選択。REDIS_ADDRが空、または繋がらなければno-opで動く。
func buildCache(cfg config.Config) repo.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewNoopCache()
	}
	client, err := cache.Connect(cfg.RedisAddr)
	if err != nil {
		log.Warnf("redis unavailable (%v), running without cache", err)
		return cache.NewNoopCache()
	}
	return cache.NewRedisCache(client)
}

func main() {
	//.envは無くてもよい（本番は実環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.PurchaseRecord{},
		&model.Notification{},
		&model.Cart{},
		&model.CartItem{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	itemRepo := infraRepo.NewItemGormRepository(gormDB)
	purchaseRepo := infraRepo.NewPurchaseGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)

	appCache := buildCache(cfg)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	itemUC := usecase.NewItemUsecase(itemRepo, appCache, cfg.CacheTTL)
	purchaseUC := usecase.NewPurchaseUsecase(itemRepo, purchaseRepo, notificationRepo, appCache)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, itemRepo, purchaseUC)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		Item:         handler.NewItemHandler(itemUC, purchaseUC),
		AdminItem:    handler.NewAdminItemHandler(itemUC),
		Cart:         handler.NewCartHandler(cartUC),
		Notification: handler.NewNotificationHandler(notificationUC, purchaseUC),
	}

	//Server起動
	e := server.New(cfg, handlers)
	if err := server.Start(e, cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
