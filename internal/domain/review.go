package domain

import (
	"context"
	"time"
)

// Review is a shopper's rating of a product
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	ProductID string    `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput submits a review
type ReviewInput struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// ReviewEligibility explains whether a shopper may review a product
type ReviewEligibility struct {
	CanReview bool   `json:"canReview"`
	Reason    string `json:"reason,omitempty"`
}

// ReviewPage is a page of reviews with aggregate figures
type ReviewPage struct {
	Reviews       []Review `json:"reviews"`
	TotalItems    int64    `json:"totalItems"`
	AverageRating float64  `json:"averageRating"`
}

var (
	ErrAlreadyReviewed = NewBusinessError("REVIEW_DUPLICATE", "You have already reviewed this product")
	ErrReviewNotBought = NewBusinessError("REVIEW_NOT_PURCHASED", "You can only review products from delivered orders")
)

// ReviewService is the review collaborator consumed by intent handlers
type ReviewService interface {
	CanReview(ctx context.Context, userID, productID string) (*ReviewEligibility, error)
	CreateReview(ctx context.Context, userID string, input ReviewInput) (*Review, error)
	ListForProduct(ctx context.Context, productID string, limit int) (*ReviewPage, error)
}
