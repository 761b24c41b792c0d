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

type addressDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	FullName  string             `bson:"fullName"`
	Phone     string             `bson:"phone"`
	Address   string             `bson:"address"`
	City      string             `bson:"city"`
	District  string             `bson:"district,omitempty"`
	Ward      string             `bson:"ward,omitempty"`
	IsDefault bool               `bson:"isDefault"`
}

func (d addressDoc) toDomain() domain.Address {
	return domain.Address{
		ID:        d.ID.Hex(),
		FullName:  d.FullName,
		Phone:     d.Phone,
		Address:   d.Address,
		City:      d.City,
		District:  d.District,
		Ward:      d.Ward,
		IsDefault: d.IsDefault,
	}
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Role         string             `bson:"role"`
	Addresses    []addressDoc       `bson:"addresses"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		Addresses:    addressesToDomain(d.Addresses),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	return u
}

func addressesToDomain(docs []addressDoc) []domain.Address {
	out := make([]domain.Address, len(docs))
	for i, a := range docs {
		out[i] = a.toDomain()
	}
	return out
}

// UserRepository stores accounts and serves profile lookups.
// It implements both domain.UserRepository and domain.UserService.
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{coll: db.Database().Collection(CollUsers), now: time.Now}
}

// Create inserts the account and assigns its id
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Username:     user.Username,
		Email:        strings.ToLower(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Addresses:    []addressDoc{},
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": strings.ToLower(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

// GetProfile returns the account without its password hash
func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (r *UserRepository) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Addresses, nil
}

// AddAddress appends an address; the first one, or one flagged default,
// becomes the only default
func (r *UserRepository) AddAddress(ctx context.Context, userID string, input domain.AddressInput) ([]domain.Address, error) {
	oid, ok := objectID(userID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}

	addr := addressDoc{
		ID:        primitive.NewObjectID(),
		FullName:  input.FullName,
		Phone:     input.Phone,
		Address:   input.Address,
		City:      input.City,
		District:  input.District,
		Ward:      input.Ward,
		IsDefault: input.IsDefault || len(doc.Addresses) == 0,
	}
	if addr.IsDefault {
		for i := range doc.Addresses {
			doc.Addresses[i].IsDefault = false
		}
	}
	doc.Addresses = append(doc.Addresses, addr)

	_, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"addresses": doc.Addresses,
		"updatedAt": r.now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	return addressesToDomain(doc.Addresses), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return doc.toDomain(), nil
}
