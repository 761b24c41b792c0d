package service

import (
	"context"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/intent"
	"github.com/Rrens/shop-assistant/internal/llm"
	"github.com/Rrens/shop-assistant/internal/repository/memory"
	"github.com/stretchr/testify/mock"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string              { return "mock" }
func (m *MockProvider) AvailableModels() []string { return []string{"mock-model"} }
func (m *MockProvider) DefaultModel() string      { return "mock-model" }
func (m *MockProvider) IsConfigured() bool        { return true }

func (m *MockProvider) Classify(ctx context.Context, req llm.ClassifyRequest, model string) (*llm.Decision, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Decision), args.Error(1)
}

func (m *MockProvider) Respond(ctx context.Context, req llm.RespondRequest, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// MockCatalog mocks the CatalogService interface
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalog) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalog) Search(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalog) ListByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, categoryID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCatalog) FindCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// MockCarts mocks the CartService interface
type MockCarts struct {
	mock.Mock
}

func (m *MockCarts) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCarts) AddItem(ctx context.Context, userID string, input domain.CartItemInput) (*domain.Cart, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCarts) UpdateItem(ctx context.Context, userID, itemRef string, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, userID, itemRef, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCarts) RemoveItem(ctx context.Context, userID, itemRef string) (*domain.Cart, error) {
	args := m.Called(ctx, userID, itemRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCarts) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockOrders mocks the OrderService interface
type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) CreateOrder(ctx context.Context, userID string, input domain.OrderInput) (*domain.Order, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrders) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrders) ListUserOrders(ctx context.Context, userID string, limit int) (*domain.OrderPage, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderPage), args.Error(1)
}

func (m *MockOrders) ListRecentDelivered(ctx context.Context, productID string, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrders) CancelOrder(ctx context.Context, orderID, userID, reason string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, userID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrders) UpdateShippingAddress(ctx context.Context, orderID, userID string, addr domain.ShippingAddress) (*domain.Order, error) {
	args := m.Called(ctx, orderID, userID, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type chatFixture struct {
	provider *MockProvider
	catalog  *MockCatalog
	carts    *MockCarts
	orders   *MockOrders
	contexts *ContextManager
	clock    *clock
	service  *ChatbotService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		provider: new(MockProvider),
		catalog:  new(MockCatalog),
		carts:    new(MockCarts),
		orders:   new(MockOrders),
		clock:    &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.contexts = NewContextManager(memory.NewSessionRepository(), 24*time.Hour)
	f.contexts.now = f.clock.Now

	router := llm.NewRouter("mock")
	router.RegisterProvider(f.provider)

	handlers := intent.NewHandlers(intent.Deps{
		Catalog:  f.catalog,
		Carts:    f.carts,
		Orders:   f.orders,
		Sessions: f.contexts,
		Now:      f.clock.Now,
	})
	classifier := NewIntentClassifier(router, handlers, nil)
	f.service = NewChatbotService(f.contexts, classifier, nil, ChatbotOptions{HistoryLimit: 10, SessionListSize: 5})
	return f
}

func testProduct(id, name string, price float64, stock int) *domain.Product {
	return &domain.Product{
		ID:         id,
		Name:       name,
		CategoryID: "cat-1",
		Price:      domain.Price{CurrentPrice: price, Currency: "VND"},
		Stock:      stock,
		IsActive:   true,
	}
}

// MockPaymentStore mocks the PaymentStore interface
type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentStore) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) GetByTransactionID(ctx context.Context, txnRef string) (*domain.Payment, error) {
	args := m.Called(ctx, txnRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) UpdateStatus(ctx context.Context, paymentID, status string, gatewayData map[string]any, at time.Time) error {
	args := m.Called(ctx, paymentID, status, gatewayData, at)
	return args.Error(0)
}

// MockOrderSettler mocks the OrderSettler interface
type MockOrderSettler struct {
	mock.Mock
}

func (m *MockOrderSettler) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderSettler) MarkPaid(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
