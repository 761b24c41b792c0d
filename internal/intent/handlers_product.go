package intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Stock urgency thresholds
const (
	stockCritical = 3
	stockWarning  = 10
)

// fetchProducts loads products concurrently and returns them in input order
func (h *Handlers) fetchProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	products := make([]domain.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			p, err := h.catalog.FindByID(gctx, id)
			if err != nil {
				return fmt.Errorf("product %s: %w", id, err)
			}
			products[i] = *p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

func (h *Handlers) findCategory(ctx context.Context, name string) (*domain.Category, error) {
	c, err := h.catalog.FindCategoryBySlug(ctx, categorySlug(name))
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, nil
	}
	return c, err
}

func (h *Handlers) SearchProducts(ctx context.Context, args Args) Result {
	query := args.String("query")
	filter := domain.ProductFilter{
		Keyword:  query,
		Category: args.String("category"),
		MinPrice: args.FloatOr("minPrice", 0),
		MaxPrice: args.FloatOr("maxPrice", 0),
		Limit:    args.Limit(10),
	}
	products, err := h.catalog.Search(ctx, filter)
	if err != nil {
		return fail(err, "I couldn't search products right now.")
	}
	msg := fmt.Sprintf("Found %d products", len(products))
	if query != "" {
		msg += fmt.Sprintf(" for \"%s\"", query)
	}
	return ok(productsData(products, map[string]any{"query": query}), msg)
}

func (h *Handlers) GetProductDetails(ctx context.Context, args Args) Result {
	var (
		product *domain.Product
		err     error
	)
	if id := h.resolveProduct(ctx, args, "productId"); id != "" {
		product, err = h.catalog.FindByID(ctx, id)
	} else if slug := args.String("slug"); slug != "" {
		product, err = h.catalog.FindBySlug(ctx, slug)
	} else {
		return clarify("Which product would you like to see?")
	}
	if err != nil {
		return fail(err, "I couldn't find that product.")
	}

	h.track(ctx, args, domain.EventProductView, product.ID, nil)

	return ok(map[string]any{
		"product":      product,
		"inStock":      product.TotalStock() > 0,
		"currentPrice": product.EffectivePrice(),
	}, fmt.Sprintf("Here are the details of %s", product.Name))
}

func (h *Handlers) BrowseCategories(ctx context.Context, args Args) Result {
	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		return fail(err, "I couldn't load the categories.")
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return ok(map[string]any{"categories": categories, "total": len(categories)},
		fmt.Sprintf("We have %d product categories.", len(categories)))
}

func (h *Handlers) GetProductsByCategory(ctx context.Context, args Args) Result {
	name := args.String("category")
	if name == "" {
		return clarify("Which category would you like to browse?")
	}
	category, err := h.findCategory(ctx, name)
	if err != nil {
		return fail(err, "I couldn't load products for that category.")
	}
	if category == nil {
		return clarify(fmt.Sprintf("I couldn't find a category called \"%s\".", name))
	}
	products, err := h.catalog.ListByCategory(ctx, category.ID, args.Limit(10))
	if err != nil {
		return fail(err, "I couldn't load products for that category.")
	}
	return ok(productsData(products, map[string]any{"category": category}),
		fmt.Sprintf("Found %d products in %s.", len(products), category.Name))
}

func (h *Handlers) GetSimilarProducts(ctx context.Context, args Args) Result {
	id := h.resolveProduct(ctx, args, "productId")
	if id == "" {
		return clarify("Which product should I find similar items for?")
	}
	product, err := h.catalog.FindByID(ctx, id)
	if err != nil {
		return fail(err, "I couldn't find similar products.")
	}
	limit := args.Limit(5)
	candidates, err := h.catalog.ListByCategory(ctx, product.CategoryID, limit+1)
	if err != nil {
		return fail(err, "I couldn't find similar products.")
	}
	similar := excludeProducts(candidates, product.ID)
	if len(similar) > limit {
		similar = similar[:limit]
	}
	return ok(productsData(similar, map[string]any{"baseProduct": product.Summary()}),
		fmt.Sprintf("Found %d products similar to %s.", len(similar), product.Name))
}

func (h *Handlers) CompareProducts(ctx context.Context, args Args) Result {
	ids := args.Strings("productIds")
	if len(ids) < 2 {
		return clarify("I need at least 2 products to compare.")
	}
	products, err := h.fetchProducts(ctx, ids)
	if err != nil {
		return fail(err, "I couldn't compare those products.")
	}

	rows := make([]map[string]any, len(products))
	for i, p := range products {
		rows[i] = map[string]any{
			"id":            p.ID,
			"name":          p.Name,
			"price":         p.ListPrice(),
			"salePrice":     p.EffectivePrice(),
			"averageRating": p.AverageRating,
			"reviewCount":   p.ReviewCount,
			"brand":         p.Brand,
			"stock":         p.TotalStock(),
			"image":         firstImage(p.Images),
		}
		if args.SessionID != "" && h.sessions != nil {
			if err := h.sessions.AddToComparison(ctx, args.SessionID, p.Summary().AsMap()); err != nil {
				log.Warn().Err(err).Str("session_id", args.SessionID).Msg("failed to queue product for comparison")
			}
		}
	}
	return ok(map[string]any{"comparison": rows}, fmt.Sprintf("Comparing %d products.", len(products)))
}

func (h *Handlers) CheckStockAvailability(ctx context.Context, args Args) Result {
	id := h.resolveProduct(ctx, args, "productId")
	if id == "" {
		return clarify("Which product should I check stock for?")
	}
	product, err := h.catalog.FindByID(ctx, id)
	if err != nil {
		return fail(err, "I couldn't check stock for that product.")
	}

	stock := product.TotalStock()
	data := map[string]any{"productId": product.ID, "productName": product.Name}
	if variantID := args.String("variantId"); variantID != "" {
		stock = 0
		if v, found := product.FindVariant(variantID); found {
			stock = v.Stock
			data["variant"] = v
		}
	}
	data["inStock"] = stock > 0
	data["quantity"] = stock

	msg := "This product is temporarily out of stock."
	if stock > 0 {
		msg = fmt.Sprintf("%d items left in stock.", stock)
	}
	return ok(data, msg)
}

// stockUrgency classifies remaining stock for scarcity messaging
func stockUrgency(stock int) (level, message string) {
	switch {
	case stock <= 0:
		return "critical", "Sold out"
	case stock <= stockCritical:
		return "critical", fmt.Sprintf("Only %d left!", stock)
	case stock <= stockWarning:
		return "warning", fmt.Sprintf("Almost gone! %d left", stock)
	}
	return "normal", "In stock"
}

func (h *Handlers) GetLowStockProducts(ctx context.Context, args Args) Result {
	if id := args.String("productId"); id != "" {
		product, err := h.catalog.FindByID(ctx, id)
		if err != nil {
			return fail(err, "I couldn't check stock for that product.")
		}
		stock := product.TotalStock()
		level, msg := stockUrgency(stock)
		return ok(map[string]any{
			"productId":    product.ID,
			"productName":  product.Name,
			"stock":        stock,
			"isLowStock":   stock > 0 && stock <= stockWarning,
			"urgencyLevel": level,
		}, msg)
	}

	products, err := h.catalog.Search(ctx, domain.ProductFilter{MaxStock: stockWarning, Limit: args.Limit(10)})
	if err != nil {
		return fail(err, "I couldn't load low stock products.")
	}
	items := make([]map[string]any, 0, len(products))
	for _, p := range products {
		stock := p.TotalStock()
		if stock <= 0 {
			continue
		}
		level, msg := stockUrgency(stock)
		items = append(items, map[string]any{
			"product":        p,
			"stock":          stock,
			"urgencyLevel":   level,
			"urgencyMessage": msg,
		})
	}
	return ok(map[string]any{"items": items, "total": len(items)},
		fmt.Sprintf("%d products are almost sold out.", len(items)))
}

func firstImage(images []string) string {
	if len(images) > 0 {
		return images[0]
	}
	return ""
}
