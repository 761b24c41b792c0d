// Package mongo stores sessions and the commerce catalog in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/config"
	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/resilience"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	CollSessions   = "chat_sessions"
	CollProducts   = "products"
	CollCategories = "categories"
	CollCarts      = "carts"
	CollOrders     = "orders"
	CollDiscounts  = "discounts"
	CollReviews    = "reviews"
	CollUsers      = "users"
	CollPayments   = "payments"
)

// DB wraps the MongoDB client and database handle
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens the client and verifies the server is reachable
func Connect(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	ping := func() error { return client.Ping(ctx, nil) }
	if err := resilience.RetryWithBackoff(ctx, resilience.StartupRetry, ping); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")

	return &DB{client: client, db: client.Database(cfg.Database)}, nil
}

// Database returns the database handle
func (d *DB) Database() *mongo.Database {
	return d.db
}

// Ping checks the server is reachable
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// Close disconnects the client
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on
func (d *DB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollSessions: {
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "lastActiveAt", Value: -1}}},
			// documents are removed once expiresAt passes
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		CollProducts: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "tags", Value: "text"}}},
		},
		CollCategories: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollCarts: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollOrders: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "items.product", Value: 1}, {Key: "orderStatus", Value: 1}}},
		},
		CollDiscounts: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollReviews: {
			{Keys: bson.D{{Key: "product", Value: 1}, {Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollPayments: {
			{Keys: bson.D{{Key: "order", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := d.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// objectID parses a hex id; malformed ids simply match nothing
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			out = append(out, oid)
		}
	}
	return out
}

func hexID(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sentinel
	}
	return err
}

// plain converts decoded BSON values into the map/slice/time shapes the rest
// of the code reads from decoded JSON.
func plain(v any) any {
	switch x := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.M:
		return plainMap(x)
	case map[string]any:
		return plainMap(x)
	case domain.Context:
		return plainMap(x)
	case primitive.A:
		return plainSlice(x)
	case []any:
		return plainSlice(x)
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.ObjectID:
		return x.Hex()
	case int32:
		return int(x)
	case int64:
		return int(x)
	}
	return v
}

func plainMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plainSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = plain(v)
	}
	return out
}
