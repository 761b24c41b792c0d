package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type discountDoc struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty"`
	Code               string               `bson:"code"`
	Description        string               `bson:"description,omitempty"`
	DiscountType       string               `bson:"discountType"`
	DiscountValue      float64              `bson:"discountValue"`
	StartDate          time.Time            `bson:"startDate"`
	EndDate            time.Time            `bson:"endDate"`
	ApplicableProducts []primitive.ObjectID `bson:"applicableProducts,omitempty"`
	MinOrderValue      float64              `bson:"minOrderValue"`
	UsageLimit         int                  `bson:"usageLimit"`
	UsedCount          int                  `bson:"usedCount"`
	IsActive           bool                 `bson:"isActive"`
}

func (d discountDoc) toDomain() domain.Discount {
	out := domain.Discount{
		ID:            d.ID.Hex(),
		Code:          d.Code,
		Description:   d.Description,
		Type:          d.DiscountType,
		Value:         d.DiscountValue,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		MinOrderValue: d.MinOrderValue,
		UsageLimit:    d.UsageLimit,
		UsedCount:     d.UsedCount,
		IsActive:      d.IsActive,
	}
	for _, p := range d.ApplicableProducts {
		out.ApplicableProducts = append(out.ApplicableProducts, p.Hex())
	}
	return out
}

// DiscountRepository implements domain.DiscountService on the discounts collection
type DiscountRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewDiscountRepository creates a new discount repository
func NewDiscountRepository(db *DB) *DiscountRepository {
	return &DiscountRepository{coll: db.Database().Collection(CollDiscounts), now: time.Now}
}

// ApplyDiscount validates code against the order and computes the reduction
func (r *DiscountRepository) ApplyDiscount(ctx context.Context, code string, orderTotal float64, productIDs []string) (*domain.DiscountApplication, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrDiscountInvalid
	}

	var doc discountDoc
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrDiscountInvalid)
	}
	d := doc.toDomain()
	return d.Apply(orderTotal, productIDs, r.now())
}

// ListActive returns vouchers usable right now, largest value first
func (r *DiscountRepository) ListActive(ctx context.Context, limit int) ([]domain.Discount, error) {
	now := r.now()
	filter := bson.M{
		"isActive":  true,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
		"$or": bson.A{
			bson.M{"usageLimit": 0},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usedCount", "$usageLimit"}}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "discountValue", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []discountDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode discounts: %w", err)
	}
	out := make([]domain.Discount, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Redeem counts one use of the voucher
func (r *DiscountRepository) Redeem(ctx context.Context, code string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"code": strings.ToUpper(code)},
		bson.M{"$inc": bson.M{"usedCount": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to redeem discount: %w", err)
	}
	return nil
}
