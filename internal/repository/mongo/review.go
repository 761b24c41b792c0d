package mongo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      string             `bson:"user"`
	UserName  string             `bson:"userName,omitempty"`
	Product   primitive.ObjectID `bson:"product"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d reviewDoc) toDomain() domain.Review {
	return domain.Review{
		ID:        d.ID.Hex(),
		UserID:    d.User,
		UserName:  d.UserName,
		ProductID: d.Product.Hex(),
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

// ReviewRepository implements domain.ReviewService. Only shoppers with a
// delivered order containing the product may review it, once.
type ReviewRepository struct {
	coll     *mongo.Collection
	orders   *mongo.Collection
	products *mongo.Collection
	users    *mongo.Collection
	now      func() time.Time
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *DB) *ReviewRepository {
	d := db.Database()
	return &ReviewRepository{
		coll:     d.Collection(CollReviews),
		orders:   d.Collection(CollOrders),
		products: d.Collection(CollProducts),
		users:    d.Collection(CollUsers),
		now:      time.Now,
	}
}

func (r *ReviewRepository) CanReview(ctx context.Context, userID, productID string) (*domain.ReviewEligibility, error) {
	pid, ok := objectID(productID)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	reviewed, err := r.coll.CountDocuments(ctx, bson.M{"user": userID, "product": pid}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to check reviews: %w", err)
	}
	if reviewed > 0 {
		return &domain.ReviewEligibility{CanReview: false, Reason: domain.ErrAlreadyReviewed.Message}, nil
	}

	bought, err := r.orders.CountDocuments(ctx, bson.M{
		"user":          userID,
		"items.product": pid,
		"orderStatus":   bson.M{"$in": bson.A{domain.OrderDelivered, domain.OrderCompleted}},
	}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to check orders: %w", err)
	}
	if bought == 0 {
		return &domain.ReviewEligibility{CanReview: false, Reason: domain.ErrReviewNotBought.Message}, nil
	}

	return &domain.ReviewEligibility{CanReview: true}, nil
}

func (r *ReviewRepository) CreateReview(ctx context.Context, userID string, input domain.ReviewInput) (*domain.Review, error) {
	eligibility, err := r.CanReview(ctx, userID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanReview {
		if eligibility.Reason == domain.ErrAlreadyReviewed.Message {
			return nil, domain.ErrAlreadyReviewed
		}
		return nil, domain.ErrReviewNotBought
	}

	pid, _ := objectID(input.ProductID)
	doc := reviewDoc{
		ID:        primitive.NewObjectID(),
		User:      userID,
		UserName:  r.userName(ctx, userID),
		Product:   pid,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: r.now(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := r.refreshRating(ctx, pid); err != nil {
		log.Warn().Err(err).Str("product_id", input.ProductID).Msg("Failed to refresh product rating")
	}

	review := doc.toDomain()
	return &review, nil
}

func (r *ReviewRepository) ListForProduct(ctx context.Context, productID string, limit int) (*domain.ReviewPage, error) {
	pid, ok := objectID(productID)
	if !ok {
		return &domain.ReviewPage{Reviews: []domain.Review{}}, nil
	}

	avg, count, err := r.aggregate(ctx, pid)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, bson.M{"product": pid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reviewDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	reviews := make([]domain.Review, len(docs))
	for i, d := range docs {
		reviews[i] = d.toDomain()
	}
	return &domain.ReviewPage{Reviews: reviews, TotalItems: count, AverageRating: avg}, nil
}

func (r *ReviewRepository) aggregate(ctx context.Context, pid primitive.ObjectID) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product": pid}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("failed to decode review stats: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return math.Round(rows[0].Avg*10) / 10, rows[0].Count, nil
}

func (r *ReviewRepository) refreshRating(ctx context.Context, pid primitive.ObjectID) error {
	avg, count, err := r.aggregate(ctx, pid)
	if err != nil {
		return err
	}
	_, err = r.products.UpdateByID(ctx, pid, bson.M{"$set": bson.M{
		"averageRating": avg,
		"reviewCount":   count,
	}})
	return err
}

func (r *ReviewRepository) userName(ctx context.Context, userID string) string {
	oid, ok := objectID(userID)
	if !ok {
		return ""
	}
	var u struct {
		Username string `bson:"username"`
	}
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"username": 1})).Decode(&u); err != nil {
		return ""
	}
	return u.Username
}
