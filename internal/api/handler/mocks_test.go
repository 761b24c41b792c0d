package handler_test

import (
	"context"
	"net/url"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockAuth mocks the Authenticator interface
type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Register(ctx context.Context, input domain.UserCreate) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuth) Login(ctx context.Context, input domain.UserLogin) (*domain.TokenPair, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockAuth) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockAuth) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockChatbot mocks the Chatbot interface
type MockChatbot struct {
	mock.Mock
}

func (m *MockChatbot) ProcessMessage(ctx context.Context, userID, message, sessionID, ipAddress string) *domain.ChatResponse {
	args := m.Called(ctx, userID, message, sessionID, ipAddress)
	return args.Get(0).(*domain.ChatResponse)
}

func (m *MockChatbot) GetSessionHistory(ctx context.Context, userID, sessionID string) (*domain.SessionHistory, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionHistory), args.Error(1)
}

func (m *MockChatbot) ClearSession(ctx context.Context, userID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockChatbot) DeleteSession(ctx context.Context, userID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockChatbot) Suggestions(ctx context.Context, userID, sessionID string) []string {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).([]string)
}

func (m *MockChatbot) GetUserSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SessionSummary), args.Error(1)
}

// MockPayments mocks the Payments interface
type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) CreatePaymentURL(ctx context.Context, orderID, userID, ipAddress string) (*domain.PaymentLink, error) {
	args := m.Called(ctx, orderID, userID, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentLink), args.Error(1)
}

func (m *MockPayments) GetByOrderID(ctx context.Context, orderID, userID string) (*domain.Payment, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPayments) HandleReturn(ctx context.Context, params url.Values) (*service.PaymentOutcome, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentOutcome), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type stubFlusher struct {
	deleted int64
}

func (f stubFlusher) Flush(ctx context.Context) (int64, error) { return f.deleted, nil }

type fixedLimiter struct {
	allowed   bool
	remaining int
	reset     time.Time
}

func (l *fixedLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	return l.allowed, l.remaining, l.reset, nil
}
