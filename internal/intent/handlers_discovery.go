package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Rrens/shop-assistant/internal/domain"
)

func (h *Handlers) GetFlashSaleProducts(ctx context.Context, args Args) Result {
	products, err := h.catalog.Search(ctx, domain.ProductFilter{OnSale: true, Sort: domain.SortBestSeller, Limit: args.Limit(10)})
	if err != nil {
		return fail(err, "I couldn't load the flash sale.")
	}
	return ok(productsData(products, nil), fmt.Sprintf("%d products are on sale right now!", len(products)))
}

func (h *Handlers) RecommendProducts(ctx context.Context, args Args) Result {
	filter := domain.ProductFilter{Keyword: args.String("query"), Limit: args.Limit(5)}
	if filter.Keyword == "" {
		filter.Featured = true
		filter.Sort = domain.SortBestSeller
	}
	products, err := h.catalog.Search(ctx, filter)
	if err != nil {
		return fail(err, "I couldn't put together recommendations.")
	}
	return ok(productsData(products, nil), fmt.Sprintf("Here are %d products picked for you", len(products)))
}

func (h *Handlers) GetBestsellingProducts(ctx context.Context, args Args) Result {
	category := args.String("category")
	products, err := h.catalog.Search(ctx, domain.ProductFilter{Category: category, Sort: domain.SortBestSeller, Limit: args.Limit(10)})
	if err != nil {
		return fail(err, "I couldn't load the best sellers.")
	}
	return ok(productsData(products, nil), fmt.Sprintf("%d best-selling products%s.", len(products), withCategory(category)))
}

func (h *Handlers) GetTrendingProducts(ctx context.Context, args Args) Result {
	products, err := h.catalog.Search(ctx, domain.ProductFilter{Sort: domain.SortNewest, Limit: args.Limit(10)})
	if err != nil {
		return fail(err, "I couldn't load trending products.")
	}
	return ok(productsData(products, nil), fmt.Sprintf("%d products are hot right now.", len(products)))
}

func (h *Handlers) GetNewArrivals(ctx context.Context, args Args) Result {
	category := args.String("category")
	days := args.Int("days", 30)
	if days <= 0 {
		days = 30
	}
	products, err := h.catalog.Search(ctx, domain.ProductFilter{
		Category:     category,
		CreatedAfter: h.now().AddDate(0, 0, -days),
		Sort:         domain.SortNewest,
		Limit:        args.Limit(15),
	})
	if err != nil {
		return fail(err, "I couldn't load new arrivals.")
	}
	if len(products) == 0 {
		return clarify(fmt.Sprintf("No new products%s in the last %d days.", withCategory(category), days))
	}
	return ok(productsData(products, map[string]any{"days": days}),
		fmt.Sprintf("%d new products%s in the last %d days", len(products), withCategory(category), days))
}

// trendingScore weighs sales above views and adds a rating bonus
func trendingScore(p domain.Product) float64 {
	return float64(p.ViewCount) + float64(p.SoldCount)*5 + p.AverageRating*10
}

func (h *Handlers) GetHotTrendingProducts(ctx context.Context, args Args) Result {
	category := args.String("category")
	limit := args.Limit(10)
	products, err := h.catalog.Search(ctx, domain.ProductFilter{Category: category, Limit: limit * 2})
	if err != nil {
		return fail(err, "I couldn't load trending products.")
	}
	if len(products) == 0 {
		return clarify(fmt.Sprintf("I couldn't find trending products%s.", withCategory(category)))
	}

	sort.SliceStable(products, func(i, j int) bool {
		return trendingScore(products[i]) > trendingScore(products[j])
	})
	if len(products) > limit {
		products = products[:limit]
	}
	scored := make([]map[string]any, len(products))
	for i, p := range products {
		scored[i] = map[string]any{"product": p, "trendingScore": trendingScore(p)}
	}

	frame := "this month"
	switch args.String("timeFrame") {
	case "day":
		frame = "today"
	case "week", "":
		frame = "this week"
	}
	return ok(map[string]any{"products": products, "scores": scored, "total": len(products)},
		fmt.Sprintf("Top %d hottest products%s %s", len(products), withCategory(category), frame))
}

func (h *Handlers) FilterProductsByPrice(ctx context.Context, args Args) Result {
	category := args.String("category")
	minPrice := args.FloatOr("minPrice", 0)
	maxPrice := args.FloatOr("maxPrice", 0)
	sortBy := args.String("sortBy")

	filter := domain.ProductFilter{
		Category: category,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Limit:    args.Limit(20),
	}
	switch sortBy {
	case "highest":
		filter.Sort = domain.SortPriceDesc
	case "lowest":
		filter.Sort = domain.SortPriceAsc
	}

	products, err := h.catalog.Search(ctx, filter)
	if err != nil {
		return fail(err, "I couldn't filter products by price.")
	}
	if len(products) == 0 {
		return clarify(fmt.Sprintf("No products%s in that price range.", withCategory(category)))
	}

	var msg string
	switch sortBy {
	case "highest":
		msg = fmt.Sprintf("%d most expensive products%s", len(products), withCategory(category))
	case "lowest":
		msg = fmt.Sprintf("%d cheapest products%s", len(products), withCategory(category))
	default:
		var bounds []string
		if minPrice > 0 {
			bounds = append(bounds, "from "+vnd(minPrice))
		}
		if maxPrice > 0 {
			bounds = append(bounds, "up to "+vnd(maxPrice))
		}
		msg = strings.TrimSpace(fmt.Sprintf("Found %d products%s %s", len(products), withCategory(category), strings.Join(bounds, " ")))
	}
	return ok(productsData(products, nil), msg)
}

func (h *Handlers) GetProductsByRating(ctx context.Context, args Args) Result {
	category := args.String("category")
	minRating := args.FloatOr("minRating", 4.0)
	products, err := h.catalog.Search(ctx, domain.ProductFilter{
		Category:  category,
		MinRating: minRating,
		Sort:      domain.SortRating,
		Limit:     args.Limit(10),
	})
	if err != nil {
		return fail(err, "I couldn't load products by rating.")
	}
	if len(products) == 0 {
		return clarify(fmt.Sprintf("No products%s rated %.1f stars or more.", withCategory(category), minRating))
	}
	return ok(productsData(products, map[string]any{"minRating": minRating}),
		fmt.Sprintf("Top %d products%s rated %.1f stars or more", len(products), withCategory(category), minRating))
}

func (h *Handlers) FilterProductsByAttributes(ctx context.Context, args Args) Result {
	category := args.String("category")
	size, color, brand := args.String("size"), args.String("color"), args.String("brand")

	products, err := h.catalog.Search(ctx, domain.ProductFilter{
		Category: category,
		Size:     size,
		Color:    color,
		Brand:    brand,
		Limit:    args.Limit(20),
	})
	if err != nil {
		return fail(err, "I couldn't filter products by those attributes.")
	}

	var attrs []string
	if brand != "" {
		attrs = append(attrs, brand)
	}
	if size != "" {
		attrs = append(attrs, "size "+size)
	}
	if color != "" {
		attrs = append(attrs, "color "+color)
	}
	desc := strings.Join(attrs, ", ")

	if len(products) == 0 {
		return clarify(strings.TrimSpace(fmt.Sprintf("No products%s matching %s.", withCategory(category), desc)))
	}
	return ok(productsData(products, nil),
		strings.TrimSpace(fmt.Sprintf("Found %d products%s %s", len(products), withCategory(category), desc)))
}
