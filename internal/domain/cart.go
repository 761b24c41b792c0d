package domain

import (
	"context"
	"fmt"
	"time"
)

// CartItem is one line of a shopping cart
type CartItem struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	VariantID   string  `json:"variantId,omitempty"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       Price   `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// Cart is a shopper's cart
type Cart struct {
	ID          string     `json:"id,omitempty"`
	UserID      string     `json:"userId"`
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Recalculate refreshes line subtotals and the cart total
func (c *Cart) Recalculate() {
	var total float64
	for i := range c.Items {
		c.Items[i].Subtotal = c.Items[i].Price.Effective() * float64(c.Items[i].Quantity)
		total += c.Items[i].Subtotal
	}
	c.TotalAmount = total
}

// ItemCount sums quantities across lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// ProductIDs lists distinct product ids in cart order
func (c *Cart) ProductIDs() []string {
	seen := make(map[string]bool, len(c.Items))
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

// FindItem returns the line matching a cart item id or a product id
func (c *Cart) FindItem(ref string) (int, bool) {
	for i, it := range c.Items {
		if it.ID == ref || it.ProductID == ref {
			return i, true
		}
	}
	return -1, false
}

// CartItemInput is a request to put a product into the cart
type CartItemInput struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CartService is the cart collaborator consumed by intent handlers
type CartService interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
	AddItem(ctx context.Context, userID string, input CartItemInput) (*Cart, error)
	UpdateItem(ctx context.Context, userID, itemRef string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, userID, itemRef string) (*Cart, error)
	Clear(ctx context.Context, userID string) error
}

// Cart rule violations
var (
	ErrInvalidQuantity = NewBusinessError("CART_INVALID_QUANTITY", "Quantity must be at least 1")
	ErrVariantNotFound = NewBusinessError("CART_VARIANT_NOT_FOUND", "That option of the product is not available")
)

// InsufficientStock reports that fewer units are available than requested
func InsufficientStock(available int) *BusinessError {
	if available <= 0 {
		return NewBusinessError("CART_OUT_OF_STOCK", "This product is out of stock")
	}
	return NewBusinessError("CART_INSUFFICIENT_STOCK", fmt.Sprintf("Only %d left in stock", available))
}
