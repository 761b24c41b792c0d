package intent

import (
	"context"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/stretchr/testify/mock"
)

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

// MockPayments mocks the PaymentService interface
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

// MockDiscounts mocks the DiscountService interface
type MockDiscounts struct {
	mock.Mock
}

func (m *MockDiscounts) ApplyDiscount(ctx context.Context, code string, orderTotal float64, productIDs []string) (*domain.DiscountApplication, error) {
	args := m.Called(ctx, code, orderTotal, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscountApplication), args.Error(1)
}

func (m *MockDiscounts) ListActive(ctx context.Context, limit int) ([]domain.Discount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Discount), args.Error(1)
}

// MockReviews mocks the ReviewService interface
type MockReviews struct {
	mock.Mock
}

func (m *MockReviews) CanReview(ctx context.Context, userID, productID string) (*domain.ReviewEligibility, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewEligibility), args.Error(1)
}

func (m *MockReviews) CreateReview(ctx context.Context, userID string, input domain.ReviewInput) (*domain.Review, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviews) ListForProduct(ctx context.Context, productID string, limit int) (*domain.ReviewPage, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewPage), args.Error(1)
}

// MockUsers mocks the UserService interface
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUsers) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *MockUsers) AddAddress(ctx context.Context, userID string, input domain.AddressInput) ([]domain.Address, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

// MockBehavior mocks the BehaviorTracker interface
type MockBehavior struct {
	mock.Mock
}

func (m *MockBehavior) Track(ctx context.Context, event domain.BehaviorEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockBehavior) RecentViewers(ctx context.Context, productID string, since time.Time) (int, error) {
	args := m.Called(ctx, productID, since)
	return args.Int(0), args.Error(1)
}

// MockNotifier mocks the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockSessions mocks the SessionContext interface
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) GetContext(ctx context.Context, sessionID string) (domain.Context, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Context), args.Error(1)
}

func (m *MockSessions) AddToComparison(ctx context.Context, sessionID string, item map[string]any) error {
	args := m.Called(ctx, sessionID, item)
	return args.Error(0)
}

type fixture struct {
	catalog   *MockCatalog
	carts     *MockCarts
	orders    *MockOrders
	payments  *MockPayments
	discounts *MockDiscounts
	reviews   *MockReviews
	users     *MockUsers
	behavior  *MockBehavior
	notifier  *MockNotifier
	sessions  *MockSessions
	handlers  *Handlers
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		catalog:   new(MockCatalog),
		carts:     new(MockCarts),
		orders:    new(MockOrders),
		payments:  new(MockPayments),
		discounts: new(MockDiscounts),
		reviews:   new(MockReviews),
		users:     new(MockUsers),
		behavior:  new(MockBehavior),
		notifier:  new(MockNotifier),
		sessions:  new(MockSessions),
		now:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.handlers = NewHandlers(Deps{
		Catalog:   f.catalog,
		Carts:     f.carts,
		Orders:    f.orders,
		Payments:  f.payments,
		Discounts: f.discounts,
		Reviews:   f.reviews,
		Users:     f.users,
		Behavior:  f.behavior,
		Notifier:  f.notifier,
		Sessions:  f.sessions,
		Now:       func() time.Time { return f.now },
	})
	return f
}

func product(id, name string, price float64, stock int) *domain.Product {
	return &domain.Product{
		ID:         id,
		Name:       name,
		CategoryID: "cat-1",
		Price:      domain.Price{CurrentPrice: price, Currency: "VND"},
		Stock:      stock,
		IsActive:   true,
	}
}

// brokenStore satisfies every collaborator and answers each call with err and
// no value. A nil err gives the (nil, nil) answers some stores produce.
type brokenStore struct {
	err error
}

func (b brokenStore) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return nil, b.err
}

func (b brokenStore) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return nil, b.err
}

func (b brokenStore) Search(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return nil, b.err
}

func (b brokenStore) ListByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Product, error) {
	return nil, b.err
}

func (b brokenStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return nil, b.err
}

func (b brokenStore) FindCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return nil, b.err
}

func (b brokenStore) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return nil, b.err
}

func (b brokenStore) AddItem(ctx context.Context, userID string, input domain.CartItemInput) (*domain.Cart, error) {
	return nil, b.err
}

func (b brokenStore) UpdateItem(ctx context.Context, userID, itemRef string, quantity int) (*domain.Cart, error) {
	return nil, b.err
}

func (b brokenStore) RemoveItem(ctx context.Context, userID, itemRef string) (*domain.Cart, error) {
	return nil, b.err
}

func (b brokenStore) Clear(ctx context.Context, userID string) error { return b.err }

func (b brokenStore) CreateOrder(ctx context.Context, userID string, input domain.OrderInput) (*domain.Order, error) {
	return nil, b.err
}

func (b brokenStore) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	return nil, b.err
}

func (b brokenStore) ListUserOrders(ctx context.Context, userID string, limit int) (*domain.OrderPage, error) {
	return nil, b.err
}

func (b brokenStore) ListRecentDelivered(ctx context.Context, productID string, limit int) ([]domain.Order, error) {
	return nil, b.err
}

func (b brokenStore) CancelOrder(ctx context.Context, orderID, userID, reason string) (*domain.Order, error) {
	return nil, b.err
}

func (b brokenStore) UpdateShippingAddress(ctx context.Context, orderID, userID string, addr domain.ShippingAddress) (*domain.Order, error) {
	return nil, b.err
}

func (b brokenStore) CreatePaymentURL(ctx context.Context, orderID, userID, ipAddress string) (*domain.PaymentLink, error) {
	return nil, b.err
}

func (b brokenStore) GetByOrderID(ctx context.Context, orderID, userID string) (*domain.Payment, error) {
	return nil, b.err
}

func (b brokenStore) ApplyDiscount(ctx context.Context, code string, orderTotal float64, productIDs []string) (*domain.DiscountApplication, error) {
	return nil, b.err
}

func (b brokenStore) ListActive(ctx context.Context, limit int) ([]domain.Discount, error) {
	return nil, b.err
}

func (b brokenStore) CanReview(ctx context.Context, userID, productID string) (*domain.ReviewEligibility, error) {
	return nil, b.err
}

func (b brokenStore) CreateReview(ctx context.Context, userID string, input domain.ReviewInput) (*domain.Review, error) {
	return nil, b.err
}

func (b brokenStore) ListForProduct(ctx context.Context, productID string, limit int) (*domain.ReviewPage, error) {
	return nil, b.err
}

func (b brokenStore) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return nil, b.err
}

func (b brokenStore) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	return nil, b.err
}

func (b brokenStore) AddAddress(ctx context.Context, userID string, input domain.AddressInput) ([]domain.Address, error) {
	return nil, b.err
}

func (b brokenStore) Track(ctx context.Context, event domain.BehaviorEvent) error { return b.err }

func (b brokenStore) RecentViewers(ctx context.Context, productID string, since time.Time) (int, error) {
	return 0, b.err
}

func (b brokenStore) Notify(ctx context.Context, n domain.Notification) error { return b.err }

func (b brokenStore) GetContext(ctx context.Context, sessionID string) (domain.Context, error) {
	return nil, b.err
}

func (b brokenStore) AddToComparison(ctx context.Context, sessionID string, item map[string]any) error {
	return b.err
}

func brokenHandlers(err error) *Handlers {
	s := brokenStore{err: err}
	return NewHandlers(Deps{
		Catalog:   s,
		Carts:     s,
		Orders:    s,
		Payments:  s,
		Discounts: s,
		Reviews:   s,
		Users:     s,
		Behavior:  s,
		Notifier:  s,
		Sessions:  s,
		Now:       func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
}
