package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentRepository implements domain.PaymentRepository
type PaymentRepository struct {
	coll *mongo.Collection
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{coll: db.Database().Collection(CollPayments)}
}

type paymentDoc struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Order         primitive.ObjectID  `bson:"order"`
	User          string              `bson:"user"`
	Amount        float64             `bson:"amount"`
	Status        string              `bson:"status"`
	PaymentMethod string              `bson:"paymentMethod"`
	TransactionID string              `bson:"transactionId,omitempty"`
	PaymentURL    string              `bson:"paymentUrl,omitempty"`
	GatewayData   bson.M              `bson:"gatewayData,omitempty"`
	PaymentDate   *primitive.DateTime `bson:"paymentDate,omitempty"`
	CreatedAt     primitive.DateTime  `bson:"createdAt"`
	UpdatedAt     primitive.DateTime  `bson:"updatedAt"`
}

func (d paymentDoc) toDomain() *domain.Payment {
	p := &domain.Payment{
		ID:            d.ID.Hex(),
		OrderID:       d.Order.Hex(),
		UserID:        d.User,
		Amount:        d.Amount,
		Status:        d.Status,
		PaymentMethod: d.PaymentMethod,
		TransactionID: d.TransactionID,
		PaymentURL:    d.PaymentURL,
		GatewayData:   plainMap(d.GatewayData),
		CreatedAt:     d.CreatedAt.Time().UTC(),
		UpdatedAt:     d.UpdatedAt.Time().UTC(),
	}
	if d.PaymentDate != nil {
		t := d.PaymentDate.Time().UTC()
		p.PaymentDate = &t
	}
	return p
}

// Create stores a payment attempt and assigns its id
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	oid, ok := objectID(p.OrderID)
	if !ok {
		return domain.ErrOrderNotFound
	}
	doc := paymentDoc{
		ID:            primitive.NewObjectID(),
		Order:         oid,
		User:          p.UserID,
		Amount:        p.Amount,
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		PaymentURL:    p.PaymentURL,
		GatewayData:   p.GatewayData,
		CreatedAt:     primitive.NewDateTimeFromTime(p.CreatedAt),
		UpdatedAt:     primitive.NewDateTimeFromTime(p.UpdatedAt),
	}
	if p.PaymentDate != nil {
		t := primitive.NewDateTimeFromTime(*p.PaymentDate)
		doc.PaymentDate = &t
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

// GetByOrderID returns the latest payment attempt for the order
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	oid, ok := objectID(orderID)
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	var doc paymentDoc
	err := r.coll.FindOne(ctx, bson.M{"order": oid},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err, domain.ErrPaymentNotFound)
	}
	return doc.toDomain(), nil
}

// GetByTransactionID finds the attempt a gateway callback refers to
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, txnRef string) (*domain.Payment, error) {
	var doc paymentDoc
	if err := r.coll.FindOne(ctx, bson.M{"transactionId": txnRef}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrPaymentNotFound)
	}
	return doc.toDomain(), nil
}

// UpdateStatus records the gateway outcome of an attempt
func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID, status string, gatewayData map[string]any, at time.Time) error {
	oid, ok := objectID(paymentID)
	if !ok {
		return domain.ErrPaymentNotFound
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"status":      status,
		"gatewayData": gatewayData,
		"paymentDate": primitive.NewDateTimeFromTime(at),
		"updatedAt":   primitive.NewDateTimeFromTime(at),
	}})
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
