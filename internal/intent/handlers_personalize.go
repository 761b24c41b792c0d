package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Rrens/shop-assistant/internal/domain"
)

// topN returns up to n keys ordered by descending count, ties by first seen
func topN(counts map[string]int, order []string, n int) []string {
	keys := make([]string, len(order))
	copy(keys, order)
	sort.SliceStable(keys, func(i, j int) bool { return counts[keys[i]] > counts[keys[j]] })
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

type purchaseStats struct {
	Orders             []domain.Order `json:"orders"`
	TotalOrders        int64          `json:"totalOrders"`
	TotalSpent         float64        `json:"totalSpent"`
	AvgOrderValue      float64        `json:"avgOrderValue"`
	FavoriteCategories []string       `json:"favoriteCategories"`
	PreferredBrands    []string       `json:"-"`
	ItemPrices         []float64      `json:"-"`
}

// purchaseHistory aggregates the shopper's recent orders
func (h *Handlers) purchaseHistory(ctx context.Context, userID string, limit int) (*purchaseStats, error) {
	page, err := h.orders.ListUserOrders(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	stats := &purchaseStats{Orders: page.Orders, TotalOrders: page.TotalItems}
	if stats.Orders == nil {
		stats.Orders = []domain.Order{}
	}

	categories, brands := map[string]int{}, map[string]int{}
	var categoryOrder, brandOrder []string
	for _, o := range page.Orders {
		stats.TotalSpent += o.TotalAmount
		for _, it := range o.Items {
			if c := it.CategoryName; c != "" {
				if categories[c] == 0 {
					categoryOrder = append(categoryOrder, c)
				}
				categories[c]++
			}
			if b := it.Brand; b != "" {
				if brands[b] == 0 {
					brandOrder = append(brandOrder, b)
				}
				brands[b]++
			}
			stats.ItemPrices = append(stats.ItemPrices, it.UnitPrice())
		}
	}

	orders := stats.TotalOrders
	if orders < 1 {
		orders = 1
	}
	stats.AvgOrderValue = stats.TotalSpent / float64(orders)
	stats.FavoriteCategories = topN(categories, categoryOrder, 3)
	stats.PreferredBrands = topN(brands, brandOrder, 3)
	return stats, nil
}

func (h *Handlers) GetUserPurchaseHistory(ctx context.Context, args Args) Result {
	stats, err := h.purchaseHistory(ctx, args.UserID, args.Limit(5))
	if err != nil {
		return fail(err, "I couldn't load your purchase history.")
	}
	summary := map[string]any{
		"totalOrders":        stats.TotalOrders,
		"totalSpent":         stats.TotalSpent,
		"avgOrderValue":      stats.AvgOrderValue,
		"favoriteCategories": stats.FavoriteCategories,
	}
	if len(stats.Orders) > 0 {
		summary["lastPurchaseDate"] = stats.Orders[0].CreatedAt
	}
	return ok(map[string]any{"orders": stats.Orders, "stats": summary}, fmt.Sprintf("You have placed %d orders, spending %s", stats.TotalOrders, vnd(stats.TotalSpent)))
}

func (h *Handlers) GetPersonalizedRecommendations(ctx context.Context, args Args) Result {
	limit := args.Limit(5)
	where := args.String("context")
	if where == "" {
		where = "general"
	}

	var (
		products []domain.Product
		reason   string
	)
	stats, err := h.purchaseHistory(ctx, args.UserID, 10)
	if err != nil {
		return fail(err, "I couldn't put together personalized recommendations.")
	}
	if len(stats.FavoriteCategories) > 0 {
		favorite := stats.FavoriteCategories[0]
		category, err := h.findCategory(ctx, favorite)
		if err != nil {
			return fail(err, "I couldn't put together personalized recommendations.")
		}
		if category != nil {
			products, err = h.catalog.ListByCategory(ctx, category.ID, limit)
			if err != nil {
				return fail(err, "I couldn't put together personalized recommendations.")
			}
			reason = "Because you like " + favorite
		}
	}
	if len(products) == 0 {
		products, err = h.catalog.Search(ctx, domain.ProductFilter{Featured: true, Limit: limit})
		if err != nil {
			return fail(err, "I couldn't put together personalized recommendations.")
		}
		reason = "Picked for you"
	}

	h.track(ctx, args, domain.EventPersonalizeReq, "", map[string]any{"context": where})
	return ok(productsData(products, map[string]any{"reason": reason, "context": where}),
		fmt.Sprintf("%s - %d matching products!", reason, len(products)))
}

func (h *Handlers) TrackUserBehavior(ctx context.Context, args Args) Result {
	action := args.String("action")
	if action == "" {
		return clarify("Which action should I record?")
	}
	productID := args.String("productId")
	if h.behavior == nil {
		return fail(nil, "Behavior tracking is not available.")
	}
	now := h.now()
	err := h.behavior.Track(ctx, domain.BehaviorEvent{
		UserID:    args.UserID,
		SessionID: args.SessionID,
		EventType: action,
		ProductID: productID,
		CreatedAt: now,
	})
	if err != nil {
		return fail(err, "I couldn't record that action.")
	}
	return ok(map[string]any{
		"userId":    args.UserID,
		"action":    action,
		"productId": productID,
		"timestamp": now,
	}, "Recorded action: "+action)
}

func (h *Handlers) GetUserPreferences(ctx context.Context, args Args) Result {
	stats, err := h.purchaseHistory(ctx, args.UserID, 20)
	if err != nil {
		return fail(err, "I couldn't load your preferences.")
	}
	if len(stats.ItemPrices) == 0 {
		return ok(map[string]any{
			"preferredBrands": []string{},
			"priceRange":      map[string]float64{"min": 0, "max": 0, "avg": 0},
			"interests":       []string{},
		}, "I don't know your preferences yet.")
	}

	lo, hi, sum := stats.ItemPrices[0], stats.ItemPrices[0], 0.0
	for _, p := range stats.ItemPrices {
		lo, hi = min(lo, p), max(hi, p)
		sum += p
	}

	var likes []string
	likes = append(likes, stats.PreferredBrands...)
	likes = append(likes, stats.FavoriteCategories...)
	msg := "You like " + strings.Join(likes, ", ")
	if len(likes) == 0 {
		msg = fmt.Sprintf("You usually spend around %s per item", vnd(sum/float64(len(stats.ItemPrices))))
	}
	return ok(map[string]any{
		"preferredBrands": stats.PreferredBrands,
		"priceRange": map[string]float64{
			"min": lo,
			"max": hi,
			"avg": sum / float64(len(stats.ItemPrices)),
		},
		"interests": stats.FavoriteCategories,
	}, msg)
}

// maskName keeps the first letter of a shopper's name
func maskName(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "***"
	}
	return string(r) + "***"
}

func (h *Handlers) GetRecentPurchases(ctx context.Context, args Args) Result {
	orders, err := h.orders.ListRecentDelivered(ctx, args.String("productId"), args.Limit(5))
	if err != nil {
		return fail(err, "I couldn't load recent purchases.")
	}
	now := h.now()
	purchases := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		product := ""
		if len(o.Items) > 0 {
			product = o.Items[0].Name
		}
		purchases = append(purchases, map[string]any{
			"userName":    maskName(o.CustomerName),
			"productName": product,
			"timestamp":   o.CreatedAt,
			"location":    o.ShippingAddress.City,
			"timeAgo":     timeAgo(now, o.CreatedAt),
		})
	}
	return ok(map[string]any{"purchases": purchases, "totalPurchases": len(purchases)},
		fmt.Sprintf("%d people bought recently", len(purchases)))
}
