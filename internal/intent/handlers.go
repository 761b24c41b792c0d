package intent

import (
	"context"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/rs/zerolog/log"
)

// SessionContext is the slice of the context manager handlers depend on
type SessionContext interface {
	GetContext(ctx context.Context, sessionID string) (domain.Context, error)
	AddToComparison(ctx context.Context, sessionID string, item map[string]any) error
}

// Deps are the collaborators handlers call into
type Deps struct {
	Catalog   domain.CatalogService
	Carts     domain.CartService
	Orders    domain.OrderService
	Payments  domain.PaymentService
	Discounts domain.DiscountService
	Reviews   domain.ReviewService
	Users     domain.UserService
	Behavior  domain.BehaviorTracker
	Notifier  domain.Notifier
	Sessions  SessionContext
	Now       func() time.Time
}

// Handlers executes catalog functions against the commerce services
type Handlers struct {
	catalog   domain.CatalogService
	carts     domain.CartService
	orders    domain.OrderService
	payments  domain.PaymentService
	discounts domain.DiscountService
	reviews   domain.ReviewService
	users     domain.UserService
	behavior  domain.BehaviorTracker
	notifier  domain.Notifier
	sessions  SessionContext
	now       func() time.Time
}

// NewHandlers creates the handler set
func NewHandlers(d Deps) *Handlers {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		catalog:   d.Catalog,
		carts:     d.Carts,
		orders:    d.Orders,
		payments:  d.Payments,
		discounts: d.Discounts,
		reviews:   d.Reviews,
		users:     d.Users,
		behavior:  d.Behavior,
		notifier:  d.Notifier,
		sessions:  d.Sessions,
		now:       now,
	}
}

// HandlerFunc executes one catalog function
type HandlerFunc func(ctx context.Context, args Args) Result

func (h *Handlers) registry() map[string]HandlerFunc {
	reg := map[string]HandlerFunc{
		FnSearchProducts:        h.SearchProducts,
		FnGetProductDetails:     h.GetProductDetails,
		FnBrowseCategories:      h.BrowseCategories,
		FnGetProductsByCategory: h.GetProductsByCategory,

		FnAddToCart:      h.AddToCart,
		FnViewCart:       h.ViewCart,
		FnRemoveFromCart: h.RemoveFromCart,
		FnUpdateCartItem: h.UpdateCartItem,

		FnGetUserOrders:         h.GetUserOrders,
		FnGetOrderDetails:       h.GetOrderDetails,
		FnCheckOrderStatus:      h.CheckOrderStatus,
		FnCancelOrder:           h.CancelOrder,
		FnCreateOrderFromCart:   h.CreateOrderFromCart,
		FnUpdateShippingAddress: h.UpdateShippingAddress,
		FnReorderPastPurchase:   h.ReorderPastPurchase,

		FnCreatePaymentLink:  h.CreatePaymentLink,
		FnCheckPaymentStatus: h.CheckPaymentStatus,

		FnValidateVoucher:    h.ValidateVoucher,
		FnGetBestVoucher:     h.GetBestVoucher,
		FnGetUserVouchers:    h.GetUserVouchers,
		FnApplyVoucherToCart: h.ApplyVoucherToCart,

		FnGetUserProfile:     h.GetUserProfile,
		FnGetUserAddresses:   h.GetUserAddresses,
		FnAddDeliveryAddress: h.AddDeliveryAddress,

		FnGetFlashSaleProducts:   h.GetFlashSaleProducts,
		FnRecommendProducts:      h.RecommendProducts,
		FnGetSimilarProducts:     h.GetSimilarProducts,
		FnGetBestsellingProducts: h.GetBestsellingProducts,
		FnGetTrendingProducts:    h.GetTrendingProducts,
		FnGetNewArrivals:         h.GetNewArrivals,
		FnGetHotTrendingProducts: h.GetHotTrendingProducts,

		FnCreateProductReview: h.CreateProductReview,
		FnGetProductReviews:   h.GetProductReviews,

		FnCompareProducts:            h.CompareProducts,
		FnFilterProductsByPrice:      h.FilterProductsByPrice,
		FnGetProductsByRating:        h.GetProductsByRating,
		FnFilterProductsByAttributes: h.FilterProductsByAttributes,

		FnCheckStockAvailability: h.CheckStockAvailability,
		FnCalculateShippingFee:   h.CalculateShippingFee,
		FnGetLowStockProducts:    h.GetLowStockProducts,

		FnGetUserPurchaseHistory:         h.GetUserPurchaseHistory,
		FnGetPersonalizedRecommendations: h.GetPersonalizedRecommendations,
		FnTrackUserBehavior:              h.TrackUserBehavior,
		FnGetUserPreferences:             h.GetUserPreferences,
		FnGetRecentPurchases:             h.GetRecentPurchases,

		FnGetFlashDeals:                h.GetFlashDeals,
		FnGetLimitedTimeOffers:         h.GetLimitedTimeOffers,
		FnGetTrendingNow:               h.GetTrendingNow,
		FnGeneratePersonalizedDiscount: h.GeneratePersonalizedDiscount,
		FnCalculateBundleSavings:       h.CalculateBundleSavings,
		FnGetAbandonedCart:             h.GetAbandonedCart,
		FnSendCartRecoveryIncentive:    h.SendCartRecoveryIncentive,
		FnGetUpgradeSuggestions:        h.GetUpgradeSuggestions,
		FnGetFrequentlyBoughtTogether:  h.GetFrequentlyBoughtTogether,
	}
	for name, fn := range reg {
		reg[name] = recovered(name, fn)
	}
	return reg
}

// sessionContext loads the caller's conversation context, or nil
func (h *Handlers) sessionContext(ctx context.Context, args Args) domain.Context {
	if args.SessionID == "" || h.sessions == nil {
		return nil
	}
	c, err := h.sessions.GetContext(ctx, args.SessionID)
	if err != nil {
		log.Debug().Err(err).Str("session_id", args.SessionID).Msg("context fallback unavailable")
		return nil
	}
	return c
}

// resolveProduct returns the explicit product argument, else the product last
// shown in the conversation, else the product in focus.
func (h *Handlers) resolveProduct(ctx context.Context, args Args, key string) string {
	if id := args.String(key); id != "" {
		return id
	}
	c := h.sessionContext(ctx, args)
	if c == nil {
		return ""
	}
	if id := c.LastMentionedProduct(); id != "" {
		return id
	}
	return c.CurrentProductID()
}

// resolveOrder returns the explicit order argument, else the last order discussed
func (h *Handlers) resolveOrder(ctx context.Context, args Args) string {
	if id := args.String("orderId"); id != "" {
		return id
	}
	if c := h.sessionContext(ctx, args); c != nil {
		return c.LastMentionedOrder()
	}
	return ""
}

func (h *Handlers) track(ctx context.Context, args Args, eventType, productID string, props map[string]any) {
	if h.behavior == nil {
		return
	}
	err := h.behavior.Track(ctx, domain.BehaviorEvent{
		UserID:     args.UserID,
		SessionID:  args.SessionID,
		EventType:  eventType,
		ProductID:  productID,
		Properties: props,
		CreatedAt:  h.now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("failed to track behavior")
	}
}

func (h *Handlers) notify(ctx context.Context, n domain.Notification) {
	if h.notifier == nil {
		return
	}
	n.CreatedAt = h.now()
	if err := h.notifier.Notify(ctx, n); err != nil {
		log.Warn().Err(err).Str("user_id", n.UserID).Str("type", n.Type).Msg("failed to send notification")
	}
}
