package auth_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type stubTokenIssuer struct {
	token string
	err   error
}

func (i *stubTokenIssuer) Issue(userID, username string, role model.Role, now time.Time) (string, time.Time, error) {
	if i.err != nil {
		return "", time.Time{}, i.err
	}
	return i.token, now.Add(15 * time.Minute), nil
}

func newLoginUsecase(userRepo *UserRepoMock, issuer *stubTokenIssuer) *auth.LoginUsecase {
	return auth.NewLoginUsecase(userRepo, auth.NewBcryptPasswordVerifier(), issuer, &stubClock{now: testNow})
}

func hashForTest(t *testing.T, plain string) string {
	t.Helper()
	h, err := auth.NewBcryptPasswordHasher(4).Hash(plain)
	assert.NoError(t, err)
	return h
}

func TestLogin_EmptyInput(t *testing.T) {
	uc := newLoginUsecase(new(UserRepoMock), &stubTokenIssuer{token: "tok"})

	_, err := uc.Execute(context.Background(), auth.LoginInput{Username: "", Password: "password1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newLoginUsecase(userRepo, &stubTokenIssuer{token: "tok"})

	userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound)

	//存在しないユーザーもパスワード違いと同じエラー
	_, err := uc.Execute(context.Background(), auth.LoginInput{Username: "ghost", Password: "password1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newLoginUsecase(userRepo, &stubTokenIssuer{token: "tok"})

	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID: "uuid-1", Username: "alice", PasswordHash: hashForTest(t, "password1"), Role: model.RoleUser,
	}, nil)

	_, err := uc.Execute(context.Background(), auth.LoginInput{Username: "alice", Password: "wrongpass"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(UserRepoMock)
	uc := newLoginUsecase(userRepo, &stubTokenIssuer{token: "signed-token"})

	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID: "uuid-1", Username: "alice", PasswordHash: hashForTest(t, "password1"), Role: model.RoleAdmin,
	}, nil)

	out, err := uc.Execute(context.Background(), auth.LoginInput{Username: " alice ", Password: "password1"})
	assert.NoError(t, err)
	assert.Equal(t, "signed-token", out.AccessToken)
	assert.Equal(t, "bearer", out.TokenType)
	assert.Equal(t, testNow.Add(15*time.Minute), out.ExpiresAt)
}
