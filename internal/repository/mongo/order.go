package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderItemDoc struct {
	Product      primitive.ObjectID `bson:"product"`
	Variant      primitive.ObjectID `bson:"variant,omitempty"`
	Name         string             `bson:"name"`
	SKU          string             `bson:"sku,omitempty"`
	Color        string             `bson:"color,omitempty"`
	Size         string             `bson:"size,omitempty"`
	Image        string             `bson:"image,omitempty"`
	Brand        string             `bson:"brand,omitempty"`
	CategoryName string             `bson:"categoryName,omitempty"`
	Quantity     int                `bson:"quantity"`
	Price        domain.Price       `bson:"price"`
}

type orderDoc struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty"`
	User            string                 `bson:"user"`
	CustomerName    string                 `bson:"customerName,omitempty"`
	Items           []orderItemDoc         `bson:"items"`
	ShippingAddress domain.ShippingAddress `bson:"shippingAddress"`
	PaymentMethod   string                 `bson:"paymentMethod"`
	PaymentStatus   string                 `bson:"paymentStatus"`
	Subtotal        float64                `bson:"subtotal"`
	ShippingFee     float64                `bson:"shippingFee"`
	DiscountCode    string                 `bson:"discountCode,omitempty"`
	DiscountAmount  float64                `bson:"discountAmount"`
	TotalAmount     float64                `bson:"totalAmount"`
	OrderStatus     string                 `bson:"orderStatus"`
	CancelReason    string                 `bson:"cancelReason,omitempty"`
	CreatedAt       time.Time              `bson:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt"`
	ConfirmedAt     *time.Time             `bson:"confirmedAt,omitempty"`
	ShippedAt       *time.Time             `bson:"shippedAt,omitempty"`
	DeliveredAt     *time.Time             `bson:"deliveredAt,omitempty"`
}

func (d orderDoc) toDomain() domain.Order {
	o := domain.Order{
		ID:              d.ID.Hex(),
		UserID:          d.User,
		CustomerName:    d.CustomerName,
		Items:           make([]domain.OrderItem, len(d.Items)),
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   d.PaymentMethod,
		PaymentStatus:   d.PaymentStatus,
		Subtotal:        d.Subtotal,
		ShippingFee:     d.ShippingFee,
		DiscountCode:    d.DiscountCode,
		DiscountAmount:  d.DiscountAmount,
		TotalAmount:     d.TotalAmount,
		Status:          d.OrderStatus,
		CancelReason:    d.CancelReason,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		ConfirmedAt:     d.ConfirmedAt,
		ShippedAt:       d.ShippedAt,
		DeliveredAt:     d.DeliveredAt,
	}
	for i, it := range d.Items {
		o.Items[i] = domain.OrderItem{
			ProductID:    it.Product.Hex(),
			VariantID:    hexID(it.Variant),
			Name:         it.Name,
			SKU:          it.SKU,
			Color:        it.Color,
			Size:         it.Size,
			Image:        it.Image,
			Brand:        it.Brand,
			CategoryName: it.CategoryName,
			Quantity:     it.Quantity,
			Price:        it.Price,
		}
	}
	return o
}

// VoucherRedeemer validates vouchers and counts their use
type VoucherRedeemer interface {
	domain.DiscountService
	Redeem(ctx context.Context, code string) error
}

// OrderRepository implements domain.OrderService
type OrderRepository struct {
	coll     *mongo.Collection
	products *mongo.Collection
	carts    domain.CartService
	catalog  domain.CatalogService
	vouchers VoucherRedeemer
	now      func() time.Time

	stockChanged func(ctx context.Context, productIDs ...string) error
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *DB, carts domain.CartService, catalog domain.CatalogService, vouchers VoucherRedeemer) *OrderRepository {
	return &OrderRepository{
		coll:     db.Database().Collection(CollOrders),
		products: db.Database().Collection(CollProducts),
		carts:    carts,
		catalog:  catalog,
		vouchers: vouchers,
		now:      time.Now,
	}
}

// OnStockChange registers a hook run after order placement or cancellation
// moves stock, e.g. to drop cached products
func (r *OrderRepository) OnStockChange(fn func(ctx context.Context, productIDs ...string) error) {
	r.stockChanged = fn
}

func (r *OrderRepository) notifyStock(ctx context.Context, items []orderItemDoc) {
	if r.stockChanged == nil || len(items) == 0 {
		return
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Product.Hex()
	}
	if err := r.stockChanged(ctx, ids...); err != nil {
		log.Warn().Err(err).Msg("Stock change hook failed")
	}
}

// CreateOrder places an order for the selected cart lines, or the whole cart.
// Stock is reserved line by line and released again if a later line fails.
func (r *OrderRepository) CreateOrder(ctx context.Context, userID string, input domain.OrderInput) (*domain.Order, error) {
	method := input.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCOD
	}
	if !domain.ValidPaymentMethod(method) {
		return nil, domain.ErrInvalidPaymentMethod
	}

	cart, err := r.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := selectLines(cart, input.CartItemIDs)
	if len(lines) == 0 {
		return nil, domain.ErrCartEmpty
	}

	items := make([]orderItemDoc, 0, len(lines))
	subtotal := decimal.Zero
	productIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		product, err := r.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		item := orderItemDoc{
			Name:         product.Name,
			Brand:        product.Brand,
			CategoryName: product.CategoryName,
			Quantity:     line.Quantity,
			Price:        product.Price,
		}
		item.Product, _ = objectID(product.ID)
		if len(product.Images) > 0 {
			item.Image = product.Images[0]
		}
		if v, ok := product.FindVariant(line.VariantID); ok {
			item.Variant, _ = objectID(v.ID)
			item.SKU, item.Color, item.Size = v.SKU, v.Color, v.Size
			if v.Price != nil {
				item.Price = *v.Price
			}
			if len(v.Images) > 0 {
				item.Image = v.Images[0]
			}
		}
		items = append(items, item)
		productIDs = append(productIDs, product.ID)
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Price.Effective()).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	now := r.now()
	doc := orderDoc{
		ID:              primitive.NewObjectID(),
		User:            userID,
		CustomerName:    input.ShippingAddress.FullName,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentUnpaid,
		Subtotal:        subtotal.InexactFloat64(),
		OrderStatus:     domain.OrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.Note != "" {
		doc.ShippingAddress.Note = input.Note
	}

	if input.DiscountCode != "" {
		applied, err := r.vouchers.ApplyDiscount(ctx, input.DiscountCode, doc.Subtotal, productIDs)
		if err != nil {
			return nil, err
		}
		doc.DiscountCode = applied.Discount.Code
		doc.DiscountAmount = applied.DiscountAmount
	}
	doc.ShippingFee = domain.OrderShippingFee(doc.Subtotal)
	doc.TotalAmount = subtotal.
		Sub(decimal.NewFromFloat(doc.DiscountAmount)).
		Add(decimal.NewFromFloat(doc.ShippingFee)).
		InexactFloat64()

	reserved := make([]orderItemDoc, 0, len(items))
	for _, it := range items {
		if err := r.adjustStock(ctx, it, -it.Quantity); err != nil {
			r.release(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, it)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.release(ctx, reserved)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	r.notifyStock(ctx, reserved)

	if doc.DiscountCode != "" {
		if err := r.vouchers.Redeem(ctx, doc.DiscountCode); err != nil {
			log.Warn().Err(err).Str("order_id", doc.ID.Hex()).Msg("Failed to count voucher use")
		}
	}

	o := doc.toDomain()
	return &o, nil
}

// GetOrder loads an order owned by userID
func (r *OrderRepository) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	oid, ok := objectID(orderID)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	var doc orderDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound)
	}
	if doc.User != userID {
		return nil, domain.ErrForbidden
	}
	o := doc.toDomain()
	return &o, nil
}

func (r *OrderRepository) ListUserOrders(ctx context.Context, userID string, limit int) (*domain.OrderPage, error) {
	filter := bson.M{"user": userID}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	orders, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return &domain.OrderPage{Orders: orders, TotalItems: total}, nil
}

// ListRecentDelivered returns delivered orders containing the product, newest first.
// An empty productID matches every product.
func (r *OrderRepository) ListRecentDelivered(ctx context.Context, productID string, limit int) ([]domain.Order, error) {
	filter := bson.M{"orderStatus": bson.M{"$in": bson.A{domain.OrderDelivered, domain.OrderCompleted}}}
	if productID != "" {
		oid, ok := objectID(productID)
		if !ok {
			return []domain.Order{}, nil
		}
		filter["items.product"] = oid
	}
	opts := options.Find().SetSort(bson.D{{Key: "deliveredAt", Value: -1}, {Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *OrderRepository) CancelOrder(ctx context.Context, orderID, userID, reason string) (*domain.Order, error) {
	order, err := r.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.Cancellable() {
		return nil, domain.ErrOrderNotCancellable
	}

	oid, _ := objectID(order.ID)
	set := bson.M{"orderStatus": domain.OrderCancelled, "updatedAt": r.now()}
	if reason != "" {
		set["cancelReason"] = reason
	}
	var doc orderDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "orderStatus": bson.M{"$in": bson.A{domain.OrderPending, domain.OrderConfirmed}}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrOrderNotCancellable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	r.release(ctx, doc.Items)
	r.notifyStock(ctx, doc.Items)
	o := doc.toDomain()
	return &o, nil
}

func (r *OrderRepository) UpdateShippingAddress(ctx context.Context, orderID, userID string, addr domain.ShippingAddress) (*domain.Order, error) {
	order, err := r.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.AddressEditable() {
		return nil, domain.ErrOrderAddressLocked
	}

	oid, _ := objectID(order.ID)
	var doc orderDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "orderStatus": bson.M{"$in": bson.A{domain.OrderPending, domain.OrderConfirmed}}},
		bson.M{"$set": bson.M{"shippingAddress": addr, "updatedAt": r.now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrOrderAddressLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	o := doc.toDomain()
	return &o, nil
}

// MarkPaid flags the order paid after a settled gateway callback
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID string) error {
	oid, ok := objectID(orderID)
	if !ok {
		return domain.ErrOrderNotFound
	}
	now := r.now()
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"paymentStatus": domain.PaymentPaid,
		"updatedAt":     now,
	}})
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}

	// a paid pending order is confirmed
	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "orderStatus": domain.OrderPending},
		bson.M{"$set": bson.M{"orderStatus": domain.OrderConfirmed, "confirmedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to confirm order: %w", err)
	}
	return nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Order, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	orders := make([]domain.Order, len(docs))
	for i, d := range docs {
		orders[i] = d.toDomain()
	}
	return orders, nil
}

// adjustStock applies delta to the line's stock; a decrement only succeeds
// while enough units remain
func (r *OrderRepository) adjustStock(ctx context.Context, it orderItemDoc, delta int) error {
	filter := bson.M{"_id": it.Product}
	inc := bson.M{"soldCount": -delta}

	if !it.Variant.IsZero() {
		match := bson.M{"_id": it.Variant}
		if delta < 0 {
			match["stock"] = bson.M{"$gte": -delta}
		}
		filter["variants"] = bson.M{"$elemMatch": match}
		inc["variants.$.stock"] = delta
	} else {
		if delta < 0 {
			filter["stock"] = bson.M{"$gte": -delta}
		}
		inc["stock"] = delta
	}

	res, err := r.products.UpdateOne(ctx, filter, bson.M{"$inc": inc})
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.InsufficientStock(0)
	}
	return nil
}

func (r *OrderRepository) release(ctx context.Context, items []orderItemDoc) {
	for _, it := range items {
		if err := r.adjustStock(ctx, it, it.Quantity); err != nil {
			log.Error().Err(err).Str("product_id", it.Product.Hex()).Msg("Failed to release stock")
		}
	}
}

func selectLines(cart *domain.Cart, itemIDs []string) []domain.CartItem {
	if cart.IsEmpty() {
		return nil
	}
	if len(itemIDs) == 0 {
		return cart.Items
	}
	want := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = true
	}
	var lines []domain.CartItem
	for _, it := range cart.Items {
		if want[it.ID] {
			lines = append(lines, it)
		}
	}
	return lines
}
