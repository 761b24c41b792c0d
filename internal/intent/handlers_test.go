package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func callerArgs(values map[string]any) Args {
	return Args{Values: values, UserID: "u1", SessionID: "u1_1717243200000"}
}

func dataMap(t *testing.T, r Result) map[string]any {
	t.Helper()
	m, ok := r.Data.(map[string]any)
	require.True(t, ok, "data is %T", r.Data)
	return m
}

func TestAddToCart_ContextFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("no product anywhere asks which one", func(t *testing.T) {
		f := newFixture()
		f.sessions.On("GetContext", mock.Anything, "u1_1717243200000").Return(domain.NewContext(f.now), nil)

		r := f.handlers.AddToCart(ctx, callerArgs(map[string]any{}))

		assert.False(t, r.Success)
		assert.Equal(t, "Which product would you like to add to your cart? Please tell me its name.", r.Message)
		f.carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("last mentioned product is used", func(t *testing.T) {
		f := newFixture()
		c := domain.NewContext(f.now)
		c[domain.CtxLastMentionedProduct] = "p1"
		f.sessions.On("GetContext", mock.Anything, "u1_1717243200000").Return(c, nil)
		f.catalog.On("FindByID", mock.Anything, "p1").Return(product("p1", "Linen shirt", 350000, 10), nil)
		cart := &domain.Cart{UserID: "u1", Items: []domain.CartItem{{ProductID: "p1", Quantity: 2}}}
		f.carts.On("AddItem", mock.Anything, "u1", domain.CartItemInput{ProductID: "p1", Quantity: 2}).Return(cart, nil)

		r := f.handlers.AddToCart(ctx, callerArgs(map[string]any{"quantity": 2}))

		assert.True(t, r.Success)
		assert.Equal(t, 2, dataMap(t, r)["itemCount"])
		f.carts.AssertExpectations(t)
	})

	t.Run("current product is the second fallback", func(t *testing.T) {
		f := newFixture()
		c := domain.NewContext(f.now)
		c[domain.CtxCurrentProduct] = map[string]any{"id": "p2", "name": "Sneakers", "price": 900000.0}
		f.sessions.On("GetContext", mock.Anything, mock.Anything).Return(c, nil)
		f.catalog.On("FindByID", mock.Anything, "p2").Return(product("p2", "Sneakers", 900000, 5), nil)
		f.carts.On("AddItem", mock.Anything, "u1", domain.CartItemInput{ProductID: "p2", Quantity: 1}).
			Return(&domain.Cart{Items: []domain.CartItem{{ProductID: "p2", Quantity: 1}}}, nil)

		r := f.handlers.AddToCart(ctx, callerArgs(map[string]any{}))

		assert.True(t, r.Success)
		f.carts.AssertExpectations(t)
	})

	t.Run("explicit argument skips the session", func(t *testing.T) {
		f := newFixture()
		f.catalog.On("FindByID", mock.Anything, "p3").Return(product("p3", "Cap", 150000, 4), nil)
		f.carts.On("AddItem", mock.Anything, "u1", domain.CartItemInput{ProductID: "p3", Quantity: 1}).
			Return(&domain.Cart{}, nil)

		r := f.handlers.AddToCart(ctx, callerArgs(map[string]any{"productId": "p3"}))

		assert.True(t, r.Success)
		f.sessions.AssertNotCalled(t, "GetContext", mock.Anything, mock.Anything)
	})

	t.Run("insufficient stock is reported", func(t *testing.T) {
		f := newFixture()
		f.catalog.On("FindByID", mock.Anything, "p4").Return(product("p4", "Scarf", 120000, 1), nil)

		r := f.handlers.AddToCart(ctx, callerArgs(map[string]any{"productId": "p4", "quantity": 3}))

		assert.False(t, r.Success)
		assert.Equal(t, "Only 1 of Scarf left in stock.", r.Message)
		f.carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCheckOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to recent orders", func(t *testing.T) {
		f := newFixture()
		f.sessions.On("GetContext", mock.Anything, mock.Anything).Return(domain.NewContext(f.now), nil)
		page := &domain.OrderPage{Orders: []domain.Order{{ID: "o1"}}, TotalItems: 1}
		f.orders.On("ListUserOrders", mock.Anything, "u1", 3).Return(page, nil)

		r := f.handlers.CheckOrderStatus(ctx, callerArgs(map[string]any{}))

		assert.True(t, r.Success)
		assert.Equal(t, page, r.Data)
	})

	t.Run("uses last mentioned order", func(t *testing.T) {
		f := newFixture()
		c := domain.NewContext(f.now)
		c[domain.CtxLastMentionedOrder] = "665f1a2b3c4d5e6f7a8b9c0d"
		f.sessions.On("GetContext", mock.Anything, mock.Anything).Return(c, nil)
		f.orders.On("GetOrder", mock.Anything, "665f1a2b3c4d5e6f7a8b9c0d", "u1").
			Return(&domain.Order{ID: "665f1a2b3c4d5e6f7a8b9c0d", Status: domain.OrderShipping}, nil)

		r := f.handlers.CheckOrderStatus(ctx, callerArgs(map[string]any{}))

		assert.True(t, r.Success)
		assert.Equal(t, "665f1a2b3c4d5e6f7a8b9c0d", dataMap(t, r)["orderId"])
		assert.Equal(t, "Order #8b9c0d is currently: Out for delivery", r.Message)
	})

	t.Run("lookup failure keeps the envelope", func(t *testing.T) {
		f := newFixture()
		f.orders.On("GetOrder", mock.Anything, "missing", "u1").Return(nil, domain.ErrOrderNotFound)

		r := f.handlers.CheckOrderStatus(ctx, callerArgs(map[string]any{"orderId": "missing"}))

		assert.False(t, r.Success)
		assert.Equal(t, "order not found", r.Error)
		assert.Equal(t, "I couldn't find that order, or you don't have access to it.", r.Message)
	})
}

func TestOrderTimeline(t *testing.T) {
	statuses := func(o *domain.Order) []string {
		var out []string
		for _, s := range orderTimeline(o) {
			out = append(out, s["status"].(string))
		}
		return out
	}

	tests := []struct {
		status string
		want   []string
	}{
		{domain.OrderPending, []string{"completed", "active", "pending", "pending"}},
		{domain.OrderConfirmed, []string{"completed", "completed", "active", "pending"}},
		{domain.OrderProcessing, []string{"completed", "completed", "active", "pending"}},
		{domain.OrderShipping, []string{"completed", "completed", "completed", "pending"}},
		{domain.OrderDelivered, []string{"completed", "completed", "completed", "completed"}},
		{domain.OrderCancelled, []string{"completed", "cancelled", "cancelled", "cancelled"}},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, statuses(&domain.Order{Status: tt.status}))
		})
	}
}

func TestOrderActions(t *testing.T) {
	names := func(status string) []string {
		var out []string
		for _, a := range orderActions(status) {
			out = append(out, a.Action)
		}
		return out
	}
	assert.Equal(t, []string{FnCancelOrder}, names(domain.OrderPending))
	assert.Equal(t, []string{FnCheckOrderStatus}, names(domain.OrderShipping))
	assert.Equal(t, []string{FnCreateProductReview, FnReorderPastPurchase, FnRecommendProducts}, names(domain.OrderCompleted))
	assert.Equal(t, []string{FnSearchProducts}, names(domain.OrderCancelled))
}

func TestCancelOrder_Notifies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cancelled := &domain.Order{ID: "order-000123", Status: domain.OrderCancelled}
	f.orders.On("CancelOrder", mock.Anything, "order-000123", "u1", "changed my mind").Return(cancelled, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n domain.Notification) bool {
		return n.UserID == "u1" && n.Type == domain.NotifyOrderStatus && n.OrderID == "order-000123"
	})).Return(nil)

	r := f.handlers.CancelOrder(ctx, callerArgs(map[string]any{"orderId": "order-000123", "reason": "changed my mind"}))

	assert.True(t, r.Success)
	f.notifier.AssertExpectations(t)
}

func TestCancelOrder_BusinessErrorMessage(t *testing.T) {
	f := newFixture()
	rule := domain.NewBusinessError("ORDER_NOT_CANCELLABLE", "Only pending or confirmed orders can be cancelled")
	f.orders.On("CancelOrder", mock.Anything, "o9", "u1", "").Return(nil, rule)

	r := f.handlers.CancelOrder(context.Background(), callerArgs(map[string]any{"orderId": "o9"}))

	assert.False(t, r.Success)
	assert.Equal(t, rule.Message, r.Message)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCompareProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("needs two products", func(t *testing.T) {
		f := newFixture()
		r := f.handlers.CompareProducts(ctx, callerArgs(map[string]any{"productIds": []string{"p1"}}))
		assert.False(t, r.Success)
		assert.Equal(t, "I need at least 2 products to compare.", r.Message)
	})

	t.Run("rows follow input order", func(t *testing.T) {
		f := newFixture()
		ids := []string{"p3", "p1", "p2"}
		for i, id := range ids {
			f.catalog.On("FindByID", mock.Anything, id).Return(product(id, "Product "+id, float64(100000*(i+1)), 5), nil)
		}
		f.sessions.On("AddToComparison", mock.Anything, "u1_1717243200000", mock.Anything).Return(nil)

		r := f.handlers.CompareProducts(ctx, callerArgs(map[string]any{"productIds": ids}))

		require.True(t, r.Success)
		rows := dataMap(t, r)["comparison"].([]map[string]any)
		require.Len(t, rows, 3)
		for i, id := range ids {
			assert.Equal(t, id, rows[i]["id"])
		}
		f.sessions.AssertNumberOfCalls(t, "AddToComparison", 3)
	})

	t.Run("one failed lookup fails the comparison", func(t *testing.T) {
		f := newFixture()
		f.catalog.On("FindByID", mock.Anything, "p1").Return(product("p1", "A", 1, 1), nil)
		f.catalog.On("FindByID", mock.Anything, "gone").Return(nil, domain.ErrProductNotFound)

		r := f.handlers.CompareProducts(ctx, callerArgs(map[string]any{"productIds": []string{"p1", "gone"}}))

		assert.False(t, r.Success)
		assert.Contains(t, r.Error, "product not found")
	})
}

func TestStockUrgency(t *testing.T) {
	tests := []struct {
		stock int
		level string
	}{
		{0, "critical"},
		{1, "critical"},
		{3, "critical"},
		{4, "warning"},
		{10, "warning"},
		{11, "normal"},
	}
	for _, tt := range tests {
		level, _ := stockUrgency(tt.stock)
		assert.Equal(t, tt.level, level, "stock %d", tt.stock)
	}
}

func TestGetLowStockProducts_SingleProduct(t *testing.T) {
	f := newFixture()
	f.catalog.On("FindByID", mock.Anything, "p1").Return(product("p1", "Tee", 99000, 2), nil)

	r := f.handlers.GetLowStockProducts(context.Background(), callerArgs(map[string]any{"productId": "p1"}))

	require.True(t, r.Success)
	data := dataMap(t, r)
	assert.Equal(t, true, data["isLowStock"])
	assert.Equal(t, "critical", data["urgencyLevel"])
	assert.Equal(t, "Only 2 left!", r.Message)
}

func TestGeneratePersonalizedDiscount(t *testing.T) {
	tests := []struct {
		trigger string
		code    string
		amount  float64
		minutes int
	}{
		{"first_purchase", "FIRST500K", 500000, 60},
		{"cart_abandonment", "COMEBACK300", 300000, 30},
		{"vip", "VIP1M", 1000000, 120},
		{"loyalty", "THANKYOU200", 200000, 30},
		{"general", "SPECIAL100", 100000, 30},
	}
	for _, tt := range tests {
		t.Run(tt.trigger, func(t *testing.T) {
			f := newFixture()
			r := f.handlers.GeneratePersonalizedDiscount(context.Background(), callerArgs(map[string]any{"trigger": tt.trigger}))

			require.True(t, r.Success)
			data := dataMap(t, r)
			assert.Equal(t, tt.code, data["discountCode"])
			assert.Equal(t, tt.amount, data["discountAmount"])
			assert.Equal(t, tt.minutes, data["expiryMinutes"])
		})
	}
}

func TestSendCartRecoveryIncentive_DiscountCapped(t *testing.T) {
	f := newFixture()
	cart := &domain.Cart{UserID: "u1", Items: []domain.CartItem{{ProductID: "p1", Quantity: 1}}, TotalAmount: 12000000}
	f.carts.On("GetCart", mock.Anything, "u1").Return(cart, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n domain.Notification) bool {
		return n.Type == domain.NotifyPromotion
	})).Return(nil)

	r := f.handlers.SendCartRecoveryIncentive(context.Background(), callerArgs(map[string]any{"incentiveType": "discount"}))

	require.True(t, r.Success)
	incentive := dataMap(t, r)["incentive"].(map[string]any)
	assert.Equal(t, "CART10", incentive["code"])
	assert.Equal(t, 500000.0, incentive["value"])
	f.notifier.AssertExpectations(t)
}

func TestCalculateShippingFee(t *testing.T) {
	ctx := context.Background()

	t.Run("distant city surcharge", func(t *testing.T) {
		f := newFixture()
		r := f.handlers.CalculateShippingFee(ctx, callerArgs(map[string]any{"city": "Đà Nẵng"}))
		assert.Equal(t, 50000.0, dataMap(t, r)["shippingFee"])
	})

	t.Run("base fee", func(t *testing.T) {
		f := newFixture()
		r := f.handlers.CalculateShippingFee(ctx, callerArgs(map[string]any{"city": "Hà Nội"}))
		assert.Equal(t, 30000.0, dataMap(t, r)["shippingFee"])
	})

	t.Run("default address", func(t *testing.T) {
		f := newFixture()
		f.users.On("ListAddresses", mock.Anything, "u1").Return([]domain.Address{
			{ID: "a1", City: "Hồ Chí Minh"},
			{ID: "a2", City: "Nha Trang", IsDefault: true},
		}, nil)
		r := f.handlers.CalculateShippingFee(ctx, callerArgs(map[string]any{}))
		data := dataMap(t, r)
		assert.Equal(t, "Nha Trang", data["city"])
		assert.Equal(t, 50000.0, data["shippingFee"])
	})
}

func TestVouchers(t *testing.T) {
	ctx := context.Background()
	cart := &domain.Cart{UserID: "u1", Items: []domain.CartItem{{ProductID: "p1", Quantity: 1}}, TotalAmount: 800000}

	t.Run("best voucher has the largest discount", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", mock.Anything, "u1").Return(cart, nil)
		f.discounts.On("ListActive", mock.Anything, activeVoucherScan).Return([]domain.Discount{
			{Code: "SMALL"}, {Code: "BIG"}, {Code: "BROKEN"},
		}, nil)
		f.discounts.On("ApplyDiscount", mock.Anything, "SMALL", 800000.0, []string{"p1"}).
			Return(&domain.DiscountApplication{Discount: &domain.Discount{Code: "SMALL"}, DiscountAmount: 50000, FinalTotal: 750000}, nil)
		f.discounts.On("ApplyDiscount", mock.Anything, "BIG", 800000.0, []string{"p1"}).
			Return(&domain.DiscountApplication{Discount: &domain.Discount{Code: "BIG"}, DiscountAmount: 120000, FinalTotal: 680000}, nil)
		f.discounts.On("ApplyDiscount", mock.Anything, "BROKEN", 800000.0, []string{"p1"}).
			Return(nil, domain.NewBusinessError(domain.CodeDiscountExpired, "Discount code is expired or not yet valid"))

		r := f.handlers.GetBestVoucher(ctx, callerArgs(map[string]any{}))

		require.True(t, r.Success)
		assert.Equal(t, 120000.0, dataMap(t, r)["discount"])
	})

	t.Run("validation error taxonomy is propagated", func(t *testing.T) {
		f := newFixture()
		rule := domain.NewBusinessError(domain.CodeDiscountMinOrder, "Minimum order value of 1.000.000 VND required")
		f.discounts.On("ApplyDiscount", mock.Anything, "BIG", 300000.0, []string(nil)).Return(nil, rule)

		r := f.handlers.ValidateVoucher(ctx, callerArgs(map[string]any{"voucherCode": "BIG", "orderTotal": 300000.0}))

		assert.False(t, r.Success)
		assert.Equal(t, rule.Message, r.Message)
	})

	t.Run("apply to empty cart", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", mock.Anything, "u1").Return(nil, domain.ErrCartNotFound)

		r := f.handlers.ApplyVoucherToCart(ctx, callerArgs(map[string]any{"voucherCode": "BIG"}))

		assert.False(t, r.Success)
		assert.Equal(t, "Your cart is empty.", r.Message)
	})
}

func TestCalculateBundleSavings(t *testing.T) {
	f := newFixture()
	f.catalog.On("FindByID", mock.Anything, "p1").Return(product("p1", "Jacket", 100000, 3), nil)
	f.catalog.On("FindByID", mock.Anything, "p2").Return(product("p2", "Boots", 200000, 3), nil)

	r := f.handlers.CalculateBundleSavings(context.Background(), callerArgs(map[string]any{"productIds": []string{"p1", "p2"}}))

	require.True(t, r.Success)
	data := dataMap(t, r)
	assert.Equal(t, 300000.0, data["individualPrice"])
	assert.Equal(t, 255000.0, data["bundlePrice"])
	assert.Equal(t, 45000.0, data["savings"])
}

func TestGetUpgradeSuggestions(t *testing.T) {
	f := newFixture()
	current := product("p1", "Phone", 1000000, 5)
	f.catalog.On("FindByID", mock.Anything, "p1").Return(current, nil)
	f.catalog.On("ListByCategory", mock.Anything, "cat-1", 20).Return([]domain.Product{
		*current,
		*product("p2", "Phone Plus", 1200000, 5),
		*product("p3", "Phone Lite", 800000, 5),
		*product("p4", "Phone Max", 1600000, 5),
	}, nil)

	r := f.handlers.GetUpgradeSuggestions(context.Background(), callerArgs(map[string]any{"currentProductId": "p1"}))

	require.True(t, r.Success)
	upgrades := dataMap(t, r)["upgrades"].([]map[string]any)
	require.Len(t, upgrades, 2)
	assert.Equal(t, true, upgrades[0]["worthIt"])
	assert.Equal(t, false, upgrades[1]["worthIt"])
}

func TestGetHotTrendingProducts_RanksByScore(t *testing.T) {
	f := newFixture()
	low := product("low", "Low", 1, 1)
	low.ViewCount = 10
	high := product("high", "High", 1, 1)
	high.SoldCount = 20
	f.catalog.On("Search", mock.Anything, domain.ProductFilter{Limit: 4}).Return([]domain.Product{*low, *high}, nil)

	r := f.handlers.GetHotTrendingProducts(context.Background(), callerArgs(map[string]any{"limit": 2}))

	require.True(t, r.Success)
	products := dataMap(t, r)["products"].([]domain.Product)
	assert.Equal(t, "high", products[0].ID)
	assert.Equal(t, "Top 2 hottest products this week", r.Message)
}

func TestFilterProductsByPrice_Sort(t *testing.T) {
	f := newFixture()
	f.catalog.On("Search", mock.Anything, domain.ProductFilter{Sort: domain.SortPriceDesc, Limit: 20}).
		Return([]domain.Product{*product("p1", "A", 5, 1)}, nil)

	r := f.handlers.FilterProductsByPrice(context.Background(), callerArgs(map[string]any{"sortBy": "highest"}))

	assert.True(t, r.Success)
	assert.Equal(t, "1 most expensive products", r.Message)
	f.catalog.AssertExpectations(t)
}

func TestCreateProductReview(t *testing.T) {
	ctx := context.Background()

	t.Run("not eligible", func(t *testing.T) {
		f := newFixture()
		f.reviews.On("CanReview", mock.Anything, "u1", "p1").Return(&domain.ReviewEligibility{CanReview: false}, nil)

		r := f.handlers.CreateProductReview(ctx, callerArgs(map[string]any{"productId": "p1", "rating": 5}))

		assert.False(t, r.Success)
		assert.Equal(t, domain.ErrReviewNotBought.Message, r.Message)
		f.reviews.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rating out of range", func(t *testing.T) {
		f := newFixture()
		r := f.handlers.CreateProductReview(ctx, callerArgs(map[string]any{"productId": "p1", "rating": 7}))
		assert.False(t, r.Success)
	})

	t.Run("created", func(t *testing.T) {
		f := newFixture()
		f.reviews.On("CanReview", mock.Anything, "u1", "p1").Return(&domain.ReviewEligibility{CanReview: true}, nil)
		f.reviews.On("CreateReview", mock.Anything, "u1", domain.ReviewInput{ProductID: "p1", Rating: 4, Comment: "Nice"}).
			Return(&domain.Review{ID: "r1", Rating: 4}, nil)

		r := f.handlers.CreateProductReview(ctx, callerArgs(map[string]any{"productId": "p1", "rating": 4, "comment": "Nice"}))

		assert.True(t, r.Success)
		assert.Equal(t, "Thanks for your 4-star review!", r.Message)
	})
}

func TestCreateOrderFromCart(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", mock.Anything, "u1").Return(&domain.Cart{}, nil)

		r := f.handlers.CreateOrderFromCart(ctx, callerArgs(map[string]any{}))

		assert.False(t, r.Success)
		assert.Equal(t, "Your cart is empty.", r.Message)
	})

	t.Run("places order and clears cart", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", mock.Anything, "u1").Return(&domain.Cart{
			Items: []domain.CartItem{{ID: "ci1", ProductID: "p1", Quantity: 1}},
		}, nil)
		addr := domain.Address{ID: "a1", FullName: "Lan", Phone: "0900", Address: "1 Le Loi", City: "Huế", IsDefault: true}
		f.users.On("ListAddresses", mock.Anything, "u1").Return([]domain.Address{addr}, nil)
		f.orders.On("CreateOrder", mock.Anything, "u1", domain.OrderInput{
			CartItemIDs:     []string{"ci1"},
			ShippingAddress: addr.Shipping(),
			PaymentMethod:   domain.PaymentMethodCOD,
		}).Return(&domain.Order{ID: "order-abcdef", TotalAmount: 380000}, nil)
		f.carts.On("Clear", mock.Anything, "u1").Return(nil)
		f.behavior.On("Track", mock.Anything, mock.Anything).Return(nil)

		r := f.handlers.CreateOrderFromCart(ctx, callerArgs(map[string]any{}))

		require.True(t, r.Success)
		assert.Equal(t, "order-abcdef", dataMap(t, r)["orderId"])
		f.carts.AssertExpectations(t)
	})
}

func TestGetProductDetails_TracksView(t *testing.T) {
	f := newFixture()
	f.catalog.On("FindByID", mock.Anything, "p1").Return(product("p1", "Hoodie", 450000, 0), nil)
	f.behavior.On("Track", mock.Anything, mock.MatchedBy(func(e domain.BehaviorEvent) bool {
		return e.EventType == domain.EventProductView && e.ProductID == "p1" && e.UserID == "u1"
	})).Return(errors.New("db down"))

	r := f.handlers.GetProductDetails(context.Background(), callerArgs(map[string]any{"productId": "p1"}))

	require.True(t, r.Success)
	assert.Equal(t, false, dataMap(t, r)["inStock"])
	f.behavior.AssertExpectations(t)
}

func TestGetRecentPurchases_MasksNames(t *testing.T) {
	f := newFixture()
	f.orders.On("ListRecentDelivered", mock.Anything, "", 5).Return([]domain.Order{{
		CustomerName:    "Ánh Nguyễn",
		Items:           []domain.OrderItem{{Name: "Dress"}},
		ShippingAddress: domain.ShippingAddress{City: "Huế"},
		CreatedAt:       f.now.Add(-90 * time.Minute),
	}}, nil)

	r := f.handlers.GetRecentPurchases(context.Background(), callerArgs(map[string]any{}))

	require.True(t, r.Success)
	purchases := dataMap(t, r)["purchases"].([]map[string]any)
	assert.Equal(t, "Á***", purchases[0]["userName"])
	assert.Equal(t, "1 hours ago", purchases[0]["timeAgo"])
}
