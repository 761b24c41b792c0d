package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/security"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

const roleCustomer = "customer"

// AuthService handles authentication operations
type AuthService struct {
	userRepo   domain.UserRepository
	jwtManager *security.JWTManager
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, jwtManager *security.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		now:        time.Now,
	}
}

// Register creates a new shopper account
func (s *AuthService) Register(ctx context.Context, input domain.UserCreate) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Username:     input.Username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         roleCustomer,
		Addresses:    []domain.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a shopper and returns tokens
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Refresh exchanges a refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*domain.TokenPair, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
