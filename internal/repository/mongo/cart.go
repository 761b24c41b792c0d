package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartItemDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Product     primitive.ObjectID `bson:"product"`
	Variant     primitive.ObjectID `bson:"variant,omitempty"`
	ProductName string             `bson:"productName"`
	Quantity    int                `bson:"quantity"`
	Price       domain.Price       `bson:"price"`
	Subtotal    float64            `bson:"subtotal"`
}

type cartDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        string             `bson:"user"`
	Items       []cartItemDoc      `bson:"items"`
	TotalAmount float64            `bson:"totalAmount"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d cartDoc) toDomain() *domain.Cart {
	c := &domain.Cart{
		ID:          hexID(d.ID),
		UserID:      d.User,
		Items:       make([]domain.CartItem, len(d.Items)),
		TotalAmount: d.TotalAmount,
		UpdatedAt:   d.UpdatedAt,
	}
	for i, it := range d.Items {
		c.Items[i] = domain.CartItem{
			ID:          it.ID.Hex(),
			ProductID:   it.Product.Hex(),
			VariantID:   hexID(it.Variant),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Subtotal:    it.Subtotal,
		}
	}
	return c
}

func cartFromDomain(c *domain.Cart) cartDoc {
	d := cartDoc{User: c.UserID, Items: make([]cartItemDoc, 0, len(c.Items)), TotalAmount: c.TotalAmount, UpdatedAt: c.UpdatedAt}
	if oid, ok := objectID(c.ID); ok {
		d.ID = oid
	}
	for _, it := range c.Items {
		item := cartItemDoc{ProductName: it.ProductName, Quantity: it.Quantity, Price: it.Price, Subtotal: it.Subtotal}
		if oid, ok := objectID(it.ID); ok {
			item.ID = oid
		} else {
			item.ID = primitive.NewObjectID()
		}
		item.Product, _ = objectID(it.ProductID)
		item.Variant, _ = objectID(it.VariantID)
		d.Items = append(d.Items, item)
	}
	return d
}

// CartRepository implements domain.CartService. Prices and stock are re-read
// from the catalog on every change.
type CartRepository struct {
	coll    *mongo.Collection
	catalog domain.CatalogService
	now     func() time.Time
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *DB, catalog domain.CatalogService) *CartRepository {
	return &CartRepository{
		coll:    db.Database().Collection(CollCarts),
		catalog: catalog,
		now:     time.Now,
	}
}

// GetCart returns the shopper's cart, empty when none was stored yet
func (r *CartRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var doc cartDoc
	err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CartRepository) AddItem(ctx context.Context, userID string, input domain.CartItemInput) (*domain.Cart, error) {
	if input.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := r.catalog.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	variant, err := pickVariant(product, input.VariantID)
	if err != nil {
		return nil, err
	}
	available := product.TotalStock()
	price := product.Price
	variantID := ""
	if variant != nil {
		available = variant.Stock
		variantID = variant.ID
		if variant.Price != nil {
			price = *variant.Price
		}
	}

	cart, err := r.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, it := range cart.Items {
		if it.ProductID == product.ID && it.VariantID == variantID {
			idx = i
			break
		}
	}

	quantity := input.Quantity
	if idx >= 0 {
		quantity += cart.Items[idx].Quantity
	}
	if quantity > available {
		return nil, domain.InsufficientStock(available)
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = quantity
		cart.Items[idx].Price = price
		cart.Items[idx].ProductName = product.Name
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:          primitive.NewObjectID().Hex(),
			ProductID:   product.ID,
			VariantID:   variantID,
			ProductName: product.Name,
			Quantity:    quantity,
			Price:       price,
		})
	}
	return r.save(ctx, cart)
}

// UpdateItem sets a line's quantity; zero or less removes the line
func (r *CartRepository) UpdateItem(ctx context.Context, userID, itemRef string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, itemRef)
	}

	cart, err := r.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx, ok := cart.FindItem(itemRef)
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}

	item := &cart.Items[idx]
	product, err := r.catalog.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	available := product.TotalStock()
	if v, ok := product.FindVariant(item.VariantID); ok {
		available = v.Stock
	}
	if quantity > available {
		return nil, domain.InsufficientStock(available)
	}

	item.Quantity = quantity
	return r.save(ctx, cart)
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, itemRef string) (*domain.Cart, error) {
	cart, err := r.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx, ok := cart.FindItem(itemRef)
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return r.save(ctx, cart)
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{"$set": bson.M{"items": bson.A{}, "totalAmount": 0, "updatedAt": r.now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *CartRepository) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.Recalculate()
	cart.UpdatedAt = r.now()

	doc := cartFromDomain(cart)
	doc.ID = primitive.ObjectID{}
	update := bson.M{"$set": bson.M{
		"items":       doc.Items,
		"totalAmount": doc.TotalAmount,
		"updatedAt":   doc.UpdatedAt,
	}}
	var saved cartDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": cart.UserID}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return saved.toDomain(), nil
}

// pickVariant resolves the requested variant, or the first one in stock
func pickVariant(p *domain.Product, variantID string) (*domain.Variant, error) {
	if variantID != "" {
		v, ok := p.FindVariant(variantID)
		if !ok {
			return nil, domain.ErrVariantNotFound
		}
		return v, nil
	}
	for i := range p.Variants {
		if p.Variants[i].Stock > 0 {
			return &p.Variants[i], nil
		}
	}
	if len(p.Variants) > 0 {
		return &p.Variants[0], nil
	}
	return nil, nil
}
