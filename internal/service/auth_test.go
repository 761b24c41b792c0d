package service

import (
	"context"
	"testing"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth() (*AuthService, *MockUserRepository, *security.JWTManager) {
	repo := new(MockUserRepository)
	jwt := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute, time.Hour)
	return NewAuthService(repo, jwt), repo, jwt
}

func TestAuthService_Register(t *testing.T) {
	svc, repo, _ := newTestAuth()
	ctx := context.Background()

	repo.On("EmailExists", ctx, "shopper@example.com").Return(false, nil).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "shopper@example.com" &&
			u.Role == "customer" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) == nil
	})).Return(nil).Once()

	user, err := svc.Register(ctx, domain.UserCreate{Username: "shopper", Email: " Shopper@Example.com ", Password: "s3cret-pass"})

	require.NoError(t, err)
	assert.Equal(t, "shopper", user.Username)
	repo.AssertExpectations(t)
}

func TestAuthService_RegisterTakenEmail(t *testing.T) {
	svc, repo, _ := newTestAuth()
	ctx := context.Background()

	repo.On("EmailExists", ctx, "shopper@example.com").Return(true, nil).Once()

	_, err := svc.Register(ctx, domain.UserCreate{Username: "shopper", Email: "shopper@example.com", Password: "s3cret-pass"})

	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	svc, repo, jwt := newTestAuth()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: "u1", Email: "shopper@example.com", PasswordHash: string(hash), Role: "customer"}

	repo.On("GetByEmail", ctx, "shopper@example.com").Return(user, nil)
	repo.On("GetByID", ctx, "u1").Return(user, nil)

	pair, err := svc.Login(ctx, domain.UserLogin{Email: "shopper@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Login(ctx, domain.UserLogin{Email: "shopper@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	svc, repo, _ := newTestAuth()
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, domain.ErrUserNotFound).Once()

	_, err := svc.Login(ctx, domain.UserLogin{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
