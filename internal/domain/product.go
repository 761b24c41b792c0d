package domain

import (
	"context"
	"time"
)

// Price holds list and sale price of a product or variant
type Price struct {
	CurrentPrice  float64  `json:"currentPrice" bson:"currentPrice"`
	DiscountPrice *float64 `json:"discountPrice,omitempty" bson:"discountPrice,omitempty"`
	Currency      string   `json:"currency" bson:"currency"`
}

// Effective returns the sale price when one is set, the list price otherwise
func (p Price) Effective() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.CurrentPrice
}

// Variant is a purchasable SKU of a product
type Variant struct {
	ID     string   `json:"id" bson:"_id"`
	SKU    string   `json:"sku" bson:"sku"`
	Color  string   `json:"color,omitempty" bson:"color,omitempty"`
	Size   string   `json:"size,omitempty" bson:"size,omitempty"`
	Stock  int      `json:"stock" bson:"stock"`
	Images []string `json:"images,omitempty" bson:"images,omitempty"`
	Price  *Price   `json:"price,omitempty" bson:"price,omitempty"`
}

// Product is a catalog entry
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	CategoryID    string    `json:"categoryId,omitempty"`
	CategoryName  string    `json:"categoryName,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	Images        []string  `json:"images,omitempty"`
	Price         Price     `json:"price"`
	Variants      []Variant `json:"variants,omitempty"`
	Stock         int       `json:"stock"`
	Tags          []string  `json:"tags,omitempty"`
	SoldCount     int       `json:"soldCount"`
	ViewCount     int       `json:"viewCount"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	IsActive      bool      `json:"isActive"`
	IsNewArrival  bool      `json:"isNewArrival"`
	IsFeatured    bool      `json:"isFeatured"`
	OnSale        bool      `json:"onSale"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TotalStock sums variant stock, falling back to the product level counter
func (p *Product) TotalStock() int {
	if len(p.Variants) == 0 {
		return p.Stock
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// ListPrice is the undiscounted price shown for the product
func (p *Product) ListPrice() float64 {
	return p.Price.CurrentPrice
}

// EffectivePrice is what a shopper pays for the product's default offer
func (p *Product) EffectivePrice() float64 {
	if len(p.Variants) > 0 && p.Variants[0].Price != nil {
		return p.Variants[0].Price.Effective()
	}
	return p.Price.Effective()
}

// FindVariant looks up a variant by id
func (p *Product) FindVariant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// VariantPrice returns the price charged for the variant
func (p *Product) VariantPrice(v *Variant) float64 {
	if v != nil && v.Price != nil {
		return v.Price.Effective()
	}
	return p.Price.Effective()
}

// Summary is the compact form stored in conversation context
func (p *Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, Price: p.EffectivePrice()}
}

// ProductSummary is the compact product form used in context and comparisons
type ProductSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// AsMap renders the summary as a context value
func (s ProductSummary) AsMap() map[string]any {
	return map[string]any{"id": s.ID, "name": s.Name, "price": s.Price}
}

// Category groups products
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Product sort orders
const (
	SortNewest     = "newest"
	SortBestSeller = "best_seller"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRating     = "rating"
)

// ProductFilter narrows a catalog query. Zero values mean "no constraint".
type ProductFilter struct {
	Keyword      string
	Category     string
	CategoryID   string
	MinPrice     float64
	MaxPrice     float64
	MinRating    float64
	Size         string
	Color        string
	Brand        string
	CreatedAfter time.Time
	OnSale       bool
	Featured     bool
	NewArrival   bool
	MaxStock     int
	ExcludeIDs   []string
	Sort         string
	Limit        int
}

// CatalogService is the product catalog consumed by intent handlers
type CatalogService interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	Search(ctx context.Context, filter ProductFilter) ([]Product, error)
	ListByCategory(ctx context.Context, categoryID string, limit int) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*Category, error)
}
