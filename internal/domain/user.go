package domain

import (
	"context"
	"time"
)

// Address is a saved delivery address
type Address struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	District  string `json:"district,omitempty"`
	Ward      string `json:"ward,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

// Shipping converts the saved address into an order snapshot
func (a Address) Shipping() ShippingAddress {
	return ShippingAddress{
		FullName: a.FullName,
		Phone:    a.Phone,
		Address:  a.Address,
		City:     a.City,
		District: a.District,
		Ward:     a.Ward,
	}
}

// User represents a shopper account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Addresses    []Address `json:"addresses"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultAddress returns the address flagged default, else the first one
func (u *User) DefaultAddress() (*Address, bool) {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i], true
		}
	}
	if len(u.Addresses) > 0 {
		return &u.Addresses[0], true
	}
	return nil, false
}

// FindAddress looks up a saved address by id
func (u *User) FindAddress(id string) (*Address, bool) {
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			return &u.Addresses[i], true
		}
	}
	return nil, false
}

// UserCreate represents user registration data
type UserCreate struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLogin represents login credentials
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents JWT token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AddressInput adds a delivery address
type AddressInput struct {
	FullName  string `json:"fullName" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	District  string `json:"district"`
	Ward      string `json:"ward"`
	IsDefault bool   `json:"isDefault"`
}

// UserRepository persists accounts for authentication
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// UserService is the profile collaborator consumed by intent handlers
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*User, error)
	ListAddresses(ctx context.Context, userID string) ([]Address, error)
	AddAddress(ctx context.Context, userID string, input AddressInput) ([]Address, error)
}
