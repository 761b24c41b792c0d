package intent

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	flashDealWindow      = 3 * time.Hour
	recoveryWindow       = time.Hour
	trendingViewerWindow = 24 * time.Hour

	bundleDiscountRate   = 0.15
	boughtTogetherRate   = 0.20
	upgradeWorthItMargin = 0.30
	cartRecoveryCap      = 500000
)

type personalDiscount struct {
	amount  float64
	code    string
	title   string
	expires time.Duration
}

var personalDiscounts = map[string]personalDiscount{
	"first_purchase":   {500000, "FIRST500K", "Welcome, new shopper!", 60 * time.Minute},
	"cart_abandonment": {300000, "COMEBACK300", "We missed you! Come back", 30 * time.Minute},
	"vip":              {1000000, "VIP1M", "An exclusive VIP offer", 120 * time.Minute},
	"loyalty":          {200000, "THANKYOU200", "Thank you for shopping with us", 30 * time.Minute},
}

var defaultPersonalDiscount = personalDiscount{100000, "SPECIAL100", "A special offer", 30 * time.Minute}

func (h *Handlers) GetFlashDeals(ctx context.Context, args Args) Result {
	products, err := h.catalog.Search(ctx, domain.ProductFilter{OnSale: true, Limit: args.Limit(5)})
	if err != nil {
		return fail(err, "I couldn't load flash deals.")
	}
	ends := h.now().Add(flashDealWindow)
	deals := make([]map[string]any, len(products))
	for i, p := range products {
		list, sale := p.ListPrice(), p.EffectivePrice()
		percent := 0.0
		if list > 0 {
			percent = math.Round((list - sale) / list * 100)
		}
		deals[i] = map[string]any{
			"product":      p,
			"flashSaleEnd": ends,
			"savedAmount":  list - sale,
			"percentOff":   percent,
		}
	}
	return ok(map[string]any{
		"deals":         deals,
		"timeRemaining": "3 hours left",
		"totalDeals":    len(deals),
	}, fmt.Sprintf("%d flash deals - only 3 hours left!", len(deals)))
}

func (h *Handlers) GetLimitedTimeOffers(ctx context.Context, args Args) Result {
	vouchers, err := h.discounts.ListActive(ctx, args.Limit(3))
	if err != nil {
		return fail(err, "I couldn't load limited-time offers.")
	}
	now := h.now()
	offers := make([]map[string]any, len(vouchers))
	for i := range vouchers {
		v := &vouchers[i]
		offers[i] = map[string]any{
			"code":           v.Code,
			"description":    v.Description,
			"value":          v.Label(),
			"minOrderValue":  v.MinOrderValue,
			"expiryDate":     v.EndDate,
			"hoursRemaining": math.Round(v.EndDate.Sub(now).Hours()),
		}
	}
	return ok(map[string]any{"offers": offers, "totalOffers": len(offers)},
		fmt.Sprintf("%d special offers are waiting for you!", len(offers)))
}

func (h *Handlers) GetTrendingNow(ctx context.Context, args Args) Result {
	timeframe := args.String("timeframe")
	if timeframe == "" {
		timeframe = "today"
	}
	products, err := h.catalog.Search(ctx, domain.ProductFilter{Sort: domain.SortNewest, Limit: args.Limit(10)})
	if err != nil {
		return fail(err, "I couldn't load trending products.")
	}

	since := h.now().Add(-trendingViewerWindow)
	trending := make([]map[string]any, len(products))
	for i, p := range products {
		viewers := 0
		if h.behavior != nil {
			n, err := h.behavior.RecentViewers(ctx, p.ID, since)
			if err != nil {
				log.Warn().Err(err).Str("product_id", p.ID).Msg("failed to count recent viewers")
			}
			viewers = n
		}
		trending[i] = map[string]any{
			"product":       p,
			"viewCount":     p.ViewCount,
			"recentViewers": viewers,
			"purchaseCount": p.SoldCount,
			"trendingScore": trendingScore(p),
		}
	}
	return ok(map[string]any{
		"products":      trending,
		"timeframe":     timeframe,
		"totalTrending": len(trending),
	}, fmt.Sprintf("%d products are going viral %s!", len(trending), timeframe))
}

func (h *Handlers) GeneratePersonalizedDiscount(ctx context.Context, args Args) Result {
	trigger := args.String("trigger")
	d, found := personalDiscounts[trigger]
	if !found {
		d = defaultPersonalDiscount
	}
	return ok(map[string]any{
		"discountCode":   d.code,
		"discountAmount": d.amount,
		"minOrderValue":  args.FloatOr("minOrderValue", 0),
		"expiryTime":     h.now().Add(d.expires),
		"expiryMinutes":  int(d.expires.Minutes()),
		"trigger":        trigger,
	}, fmt.Sprintf("%s - %s off with code %s", d.title, vnd(d.amount), d.code))
}

func (h *Handlers) CalculateBundleSavings(ctx context.Context, args Args) Result {
	ids := args.Strings("productIds")
	if len(ids) < 2 {
		return clarify("I need at least 2 products to price a bundle.")
	}
	products, err := h.fetchProducts(ctx, ids)
	if err != nil {
		return fail(err, "I couldn't calculate the bundle savings.")
	}

	individual := decimal.Zero
	items := make([]domain.ProductSummary, len(products))
	for i := range products {
		items[i] = products[i].Summary()
		individual = individual.Add(decimal.NewFromFloat(items[i].Price))
	}
	bundle := individual.Mul(decimal.NewFromFloat(1 - bundleDiscountRate)).Round(0)
	savings := individual.Sub(bundle)

	return ok(map[string]any{
		"products":        items,
		"individualPrice": individual.InexactFloat64(),
		"bundlePrice":     bundle.InexactFloat64(),
		"savings":         savings.InexactFloat64(),
		"savingsPercent":  bundleDiscountRate * 100,
	}, fmt.Sprintf("Buy them together and save %s (%.0f%%)!", vnd(savings.InexactFloat64()), bundleDiscountRate*100))
}

func (h *Handlers) GetAbandonedCart(ctx context.Context, args Args) Result {
	cart, err := h.loadCart(ctx, args.UserID)
	if err != nil {
		return fail(err, "I couldn't load your cart.")
	}
	if cart.IsEmpty() {
		return clarify("Your cart is empty.")
	}
	h.track(ctx, args, domain.EventCartAbandon, "", map[string]any{"totalValue": cart.TotalAmount})
	return ok(map[string]any{
		"cart":               cart,
		"abandonedAt":        cart.UpdatedAt,
		"timeSinceAbandoned": timeAgo(h.now(), cart.UpdatedAt),
		"totalValue":         cart.TotalAmount,
		"itemCount":          len(cart.Items),
	}, fmt.Sprintf("You have %d products waiting for checkout (%s)", len(cart.Items), vnd(cart.TotalAmount)))
}

func (h *Handlers) SendCartRecoveryIncentive(ctx context.Context, args Args) Result {
	cart, err := h.loadCart(ctx, args.UserID)
	if err != nil {
		return fail(err, "I couldn't load your cart.")
	}
	if cart.IsEmpty() {
		return clarify("Your cart is empty, so there is nothing to recover.")
	}

	kind := args.String("incentiveType")
	if kind == "" {
		kind = "free_shipping"
	}
	var incentive map[string]any
	switch kind {
	case "free_shipping":
		incentive = map[string]any{
			"type":    "free_shipping",
			"value":   float64(baseShippingFee),
			"code":    "FREESHIP",
			"message": "Free nationwide shipping if you check out within 1 hour!",
		}
	case "discount":
		value := math.Min(cart.TotalAmount*0.1, cartRecoveryCap)
		incentive = map[string]any{
			"type":    "discount",
			"value":   value,
			"code":    "CART10",
			"message": fmt.Sprintf("An extra %s off!", vnd(value)),
		}
	case "gift":
		incentive = map[string]any{
			"type":     "gift",
			"value":    0.0,
			"giftName": "Premium tote bag",
			"message":  "Get a premium tote bag when you complete your order!",
		}
	default:
		incentive = map[string]any{
			"type":    "reminder",
			"message": "Your cart is waiting for you!",
		}
	}

	expires := h.now().Add(recoveryWindow)
	msg := incentive["message"].(string)
	h.notify(ctx, domain.Notification{
		UserID:  args.UserID,
		Type:    domain.NotifyPromotion,
		Title:   "Your cart is waiting",
		Message: msg,
		Data:    map[string]any{"incentive": incentive, "expiryTime": expires},
	})
	return ok(map[string]any{
		"incentive":  incentive,
		"cartValue":  cart.TotalAmount,
		"expiryTime": expires,
	}, msg)
}

func (h *Handlers) GetUpgradeSuggestions(ctx context.Context, args Args) Result {
	id := h.resolveProduct(ctx, args, "currentProductId")
	if id == "" {
		return clarify("Which product would you like to upgrade from?")
	}
	current, err := h.catalog.FindByID(ctx, id)
	if err != nil {
		return fail(err, "I couldn't find upgrade suggestions.")
	}
	candidates, err := h.catalog.ListByCategory(ctx, current.CategoryID, 20)
	if err != nil {
		return fail(err, "I couldn't find upgrade suggestions.")
	}

	price := current.EffectivePrice()
	upgrades := make([]map[string]any, 0, 3)
	for _, p := range candidates {
		if p.ID == current.ID || p.EffectivePrice() <= price {
			continue
		}
		diff := p.EffectivePrice() - price
		upgrades = append(upgrades, map[string]any{
			"product":   p,
			"priceDiff": diff,
			"worthIt":   diff < price*upgradeWorthItMargin,
		})
		if len(upgrades) == 3 {
			break
		}
	}

	msg := "This is already the best version available."
	if len(upgrades) > 0 {
		msg = fmt.Sprintf("There are %d higher-end alternatives!", len(upgrades))
	}
	return ok(map[string]any{"currentProduct": current.Summary(), "upgrades": upgrades}, msg)
}

func (h *Handlers) GetFrequentlyBoughtTogether(ctx context.Context, args Args) Result {
	ids := args.Strings("productIds")
	if len(ids) == 0 {
		if id := h.resolveProduct(ctx, args, "productId"); id != "" {
			ids = []string{id}
		}
	}
	if len(ids) == 0 {
		return clarify("Which product should I find companions for?")
	}
	base, err := h.catalog.FindByID(ctx, ids[0])
	if err != nil {
		return fail(err, "I couldn't find products bought together.")
	}
	candidates, err := h.catalog.ListByCategory(ctx, base.CategoryID, 10)
	if err != nil {
		return fail(err, "I couldn't find products bought together.")
	}

	suggestions := excludeProducts(candidates, ids...)
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return ok(map[string]any{
		"mainProducts":   len(ids),
		"suggestions":    suggestions,
		"bundleDiscount": boughtTogetherRate * 100,
	}, fmt.Sprintf("Shoppers often add these %d products too (%.0f%% off together)", len(suggestions), boughtTogetherRate*100))
}
