package intent

import (
	"context"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/domain"
)

func (h *Handlers) CreateProductReview(ctx context.Context, args Args) Result {
	productID := h.resolveProduct(ctx, args, "productId")
	if productID == "" {
		return clarify("Which product would you like to review?")
	}
	rating := args.Int("rating", 0)
	if rating < 1 || rating > 5 {
		return clarify("How many stars would you give it, from 1 to 5?")
	}

	eligibility, err := h.reviews.CanReview(ctx, args.UserID, productID)
	if err != nil {
		return fail(err, "I couldn't check whether you can review this product.")
	}
	if !eligibility.CanReview {
		msg := eligibility.Reason
		if msg == "" {
			msg = domain.ErrReviewNotBought.Message
		}
		return clarify(msg)
	}

	review, err := h.reviews.CreateReview(ctx, args.UserID, domain.ReviewInput{
		ProductID: productID,
		Rating:    rating,
		Comment:   args.String("comment"),
	})
	if err != nil {
		return fail(err, "I couldn't save your review.")
	}
	return ok(review, fmt.Sprintf("Thanks for your %d-star review!", rating))
}

func (h *Handlers) GetProductReviews(ctx context.Context, args Args) Result {
	productID := h.resolveProduct(ctx, args, "productId")
	if productID == "" {
		return clarify("Which product's reviews would you like to see?")
	}
	page, err := h.reviews.ListForProduct(ctx, productID, args.Limit(5))
	if err != nil {
		return fail(err, "I couldn't load reviews for that product.")
	}
	if page.Reviews == nil {
		page.Reviews = []domain.Review{}
	}
	return ok(map[string]any{
		"productId":     productID,
		"reviews":       page.Reviews,
		"total":         page.TotalItems,
		"averageRating": page.AverageRating,
	}, fmt.Sprintf("This product has %d reviews.", page.TotalItems))
}
