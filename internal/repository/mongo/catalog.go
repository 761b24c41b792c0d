package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultSearchLimit = 20

type variantDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	SKU    string             `bson:"sku"`
	Color  string             `bson:"color,omitempty"`
	Size   string             `bson:"size,omitempty"`
	Stock  int                `bson:"stock"`
	Images []string           `bson:"images,omitempty"`
	Price  *domain.Price      `bson:"price,omitempty"`
}

type productDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Slug          string             `bson:"slug"`
	Description   string             `bson:"description,omitempty"`
	Category      primitive.ObjectID `bson:"category,omitempty"`
	Brand         string             `bson:"brand,omitempty"`
	Images        []string           `bson:"images,omitempty"`
	Price         domain.Price       `bson:"price"`
	Variants      []variantDoc       `bson:"variants,omitempty"`
	Stock         int                `bson:"stock"`
	Tags          []string           `bson:"tags,omitempty"`
	SoldCount     int                `bson:"soldCount"`
	ViewCount     int                `bson:"viewCount"`
	AverageRating float64            `bson:"averageRating"`
	ReviewCount   int                `bson:"reviewCount"`
	IsActive      bool               `bson:"isActive"`
	IsNewArrival  bool               `bson:"isNewArrival"`
	IsFeatured    bool               `bson:"isFeatured"`
	OnSale        bool               `bson:"onSale"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d productDoc) toDomain(categoryName string) domain.Product {
	p := domain.Product{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Slug:          d.Slug,
		Description:   d.Description,
		CategoryID:    hexID(d.Category),
		CategoryName:  categoryName,
		Brand:         d.Brand,
		Images:        d.Images,
		Price:         d.Price,
		Stock:         d.Stock,
		Tags:          d.Tags,
		SoldCount:     d.SoldCount,
		ViewCount:     d.ViewCount,
		AverageRating: d.AverageRating,
		ReviewCount:   d.ReviewCount,
		IsActive:      d.IsActive,
		IsNewArrival:  d.IsNewArrival,
		IsFeatured:    d.IsFeatured,
		OnSale:        d.OnSale,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, v := range d.Variants {
		p.Variants = append(p.Variants, domain.Variant{
			ID:     hexID(v.ID),
			SKU:    v.SKU,
			Color:  v.Color,
			Size:   v.Size,
			Stock:  v.Stock,
			Images: v.Images,
			Price:  v.Price,
		})
	}
	return p
}

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	IsActive    bool               `bson:"isActive"`
}

func (d categoryDoc) toDomain() domain.Category {
	return domain.Category{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		IsActive:    d.IsActive,
	}
}

// CatalogRepository implements domain.CatalogService over products and categories
type CatalogRepository struct {
	products   *mongo.Collection
	categories *mongo.Collection
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{
		products:   db.Database().Collection(CollProducts),
		categories: db.Database().Collection(CollCategories),
	}
}

func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "isActive": true})
}

func (r *CatalogRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug, "isActive": true})
}

func (r *CatalogRepository) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	var doc productDoc
	if err := r.products.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrProductNotFound)
	}
	products, err := r.withCategoryNames(ctx, []productDoc{doc})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

// Search runs a product query; zero-valued filter fields add no constraint
func (r *CatalogRepository) Search(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	filter, err := r.buildFilter(ctx, f)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return []domain.Product{}, nil
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	opts := options.Find().SetSort(sortFor(f.Sort)).SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *CatalogRepository) ListByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Product, error) {
	oid, ok := objectID(categoryID)
	if !ok {
		return []domain.Product{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	opts := options.Find().SetSort(sortFor(domain.SortBestSeller)).SetLimit(int64(limit))
	return r.find(ctx, bson.M{"category": oid, "isActive": true}, opts)
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cursor, err := r.categories.Find(ctx, bson.M{"isActive": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	categories := make([]domain.Category, len(docs))
	for i, d := range docs {
		categories[i] = d.toDomain()
	}
	return categories, nil
}

// FindCategoryBySlug matches the slug exactly or the name case-insensitively
func (r *CatalogRepository) FindCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrCategoryNotFound
	}
	filter := bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"slug": strings.ToLower(slug)},
			bson.M{"name": exactInsensitive(slug)},
		},
	}
	var doc categoryDoc
	if err := r.categories.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound)
	}
	c := doc.toDomain()
	return &c, nil
}

// IncrementViews bumps the view counter used by trending scores
func (r *CatalogRepository) IncrementViews(ctx context.Context, productID string) error {
	oid, ok := objectID(productID)
	if !ok {
		return domain.ErrProductNotFound
	}
	_, err := r.products.UpdateByID(ctx, oid, bson.M{"$inc": bson.M{"viewCount": 1}})
	return err
}

func (r *CatalogRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Product, error) {
	cursor, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return r.withCategoryNames(ctx, docs)
}

func (r *CatalogRepository) withCategoryNames(ctx context.Context, docs []productDoc) ([]domain.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(docs))
	seen := make(map[primitive.ObjectID]bool)
	for _, d := range docs {
		if !d.Category.IsZero() && !seen[d.Category] {
			seen[d.Category] = true
			ids = append(ids, d.Category)
		}
	}

	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		cursor, err := r.categories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
			options.Find().SetProjection(bson.M{"name": 1}))
		if err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		var cats []categoryDoc
		if err := cursor.All(ctx, &cats); err != nil {
			return nil, fmt.Errorf("failed to decode categories: %w", err)
		}
		for _, c := range cats {
			names[c.ID] = c.Name
		}
	}

	products := make([]domain.Product, len(docs))
	for i, d := range docs {
		products[i] = d.toDomain(names[d.Category])
	}
	return products, nil
}

// buildFilter returns nil when the filter names a category that does not exist
func (r *CatalogRepository) buildFilter(ctx context.Context, f domain.ProductFilter) (bson.M, error) {
	filter := bson.M{"isActive": true}
	var and bson.A

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		rx := contains(kw)
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
			bson.M{"brand": rx},
			bson.M{"tags": rx},
		}})
	}

	switch {
	case f.CategoryID != "":
		oid, ok := objectID(f.CategoryID)
		if !ok {
			return nil, nil
		}
		filter["category"] = oid
	case f.Category != "":
		cat, err := r.FindCategoryBySlug(ctx, f.Category)
		if err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return nil, nil
			}
			return nil, err
		}
		oid, _ := objectID(cat.ID)
		filter["category"] = oid
	}

	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		filter["price.currentPrice"] = price
	}

	if f.MinRating > 0 {
		filter["averageRating"] = bson.M{"$gte": f.MinRating}
	}
	if f.Size != "" {
		filter["variants.size"] = exactInsensitive(f.Size)
	}
	if f.Color != "" {
		filter["variants.color"] = contains(f.Color)
	}
	if f.Brand != "" {
		filter["brand"] = contains(f.Brand)
	}
	if !f.CreatedAfter.IsZero() {
		filter["createdAt"] = bson.M{"$gte": f.CreatedAfter}
	}
	if f.OnSale {
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"onSale": true},
			bson.M{"price.discountPrice": bson.M{"$gt": 0}},
		}})
	}
	if f.Featured {
		filter["isFeatured"] = true
	}
	if f.NewArrival {
		filter["isNewArrival"] = true
	}
	if f.MaxStock > 0 {
		filter["stock"] = bson.M{"$gt": 0, "$lte": f.MaxStock}
	}
	if len(f.ExcludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": objectIDs(f.ExcludeIDs)}
	}

	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter, nil
}

func sortFor(s string) bson.D {
	switch s {
	case domain.SortBestSeller:
		return bson.D{{Key: "soldCount", Value: -1}, {Key: "_id", Value: 1}}
	case domain.SortPriceAsc:
		return bson.D{{Key: "price.currentPrice", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortPriceDesc:
		return bson.D{{Key: "price.currentPrice", Value: -1}, {Key: "_id", Value: 1}}
	case domain.SortRating:
		return bson.D{{Key: "averageRating", Value: -1}, {Key: "reviewCount", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func contains(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func exactInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}
