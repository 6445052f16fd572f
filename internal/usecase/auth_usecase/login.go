package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// ログインの入力
type LoginInput struct {
	Username string
	Password string
}

// ログインの出力（bearerトークン）
type LoginOutput struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// 認証失敗はどの段階でも同じエラーにする（ユーザー列挙を防ぐ）
var ErrInvalidCredentials = errors.New("incorrect username or password")

// ハッシュと平文の照合
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// アクセストークンの発行
type TokenIssuer interface {
	Issue(userID, username string, role model.Role, now time.Time) (string, time.Time, error)
}

// LoginUsecaseはログインの処理。
type LoginUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	issuer   TokenIssuer
	clock    Clock
}

// DI
func NewLoginUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo: userRepo,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

// ログイン実行
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return LoginOutput{}, ErrInvalidCredentials
	}

	user, err := u.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return LoginOutput{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginOutput{}, err
	}

	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return LoginOutput{}, ErrInvalidCredentials
	}

	token, expiresAt, err := u.issuer.Issue(user.ID, user.Username, user.Role, u.clock.Now())
	if err != nil {
		return LoginOutput{}, err
	}

	return LoginOutput{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
