package domain

import (
	"context"
	"time"
)

// Order statuses
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipping   = "shipping"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// Payment methods and statuses
const (
	PaymentMethodCOD   = "cod"
	PaymentMethodVNPay = "vnpay"

	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// ShippingAddress is the delivery snapshot stored on an order
type ShippingAddress struct {
	FullName string `json:"fullName" bson:"fullName"`
	Phone    string `json:"phone" bson:"phone"`
	Address  string `json:"address" bson:"address"`
	City     string `json:"city" bson:"city"`
	District string `json:"district,omitempty" bson:"district,omitempty"`
	Ward     string `json:"ward,omitempty" bson:"ward,omitempty"`
	Note     string `json:"note,omitempty" bson:"note,omitempty"`
}

// OrderItem is a product snapshot inside an order
type OrderItem struct {
	ProductID    string `json:"productId"`
	VariantID    string `json:"variantId,omitempty"`
	Name         string `json:"name"`
	SKU          string `json:"sku,omitempty"`
	Color        string `json:"color,omitempty"`
	Size         string `json:"size,omitempty"`
	Image        string `json:"image,omitempty"`
	Brand        string `json:"brand,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
	Quantity     int    `json:"quantity"`
	Price        Price  `json:"price"`
}

// UnitPrice is the price paid per unit
func (i OrderItem) UnitPrice() float64 {
	return i.Price.Effective()
}

// Order is a placed purchase
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	CustomerName    string          `json:"customerName,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	Subtotal        float64         `json:"subtotal"`
	ShippingFee     float64         `json:"shippingFee"`
	DiscountCode    string          `json:"discountCode,omitempty"`
	DiscountAmount  float64         `json:"discountAmount"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          string          `json:"status"`
	CancelReason    string          `json:"cancelReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ConfirmedAt     *time.Time      `json:"confirmedAt,omitempty"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
}

// Cancellable reports whether the shopper may still cancel the order
func (o *Order) Cancellable() bool {
	return o.Status == OrderPending || o.Status == OrderConfirmed
}

// AddressEditable reports whether the delivery address may still change
func (o *Order) AddressEditable() bool {
	return o.Status == OrderPending || o.Status == OrderConfirmed
}

// ShortID is the last six characters of the id, used in chat replies
func (o *Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

// OrderPage is a page of orders with the total count
type OrderPage struct {
	Orders     []Order `json:"orders"`
	TotalItems int64   `json:"totalItems"`
}

// OrderInput places an order from the shopper's cart
type OrderInput struct {
	CartItemIDs     []string        `json:"cartItemIds,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	DiscountCode    string          `json:"discountCode,omitempty"`
	Note            string          `json:"note,omitempty"`
}

// FreeShippingThreshold waives the order shipping fee
const FreeShippingThreshold = 500000

// OrderShippingFee returns the fee charged at checkout
func OrderShippingFee(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return 30000
}

// OrderService is the order collaborator consumed by intent handlers
type OrderService interface {
	CreateOrder(ctx context.Context, userID string, input OrderInput) (*Order, error)
	GetOrder(ctx context.Context, orderID, userID string) (*Order, error)
	ListUserOrders(ctx context.Context, userID string, limit int) (*OrderPage, error)
	ListRecentDelivered(ctx context.Context, productID string, limit int) ([]Order, error)
	CancelOrder(ctx context.Context, orderID, userID, reason string) (*Order, error)
	UpdateShippingAddress(ctx context.Context, orderID, userID string, addr ShippingAddress) (*Order, error)
}

// Order rule violations
var (
	ErrOrderNotCancellable  = NewBusinessError("ORDER_NOT_CANCELLABLE", "This order can no longer be cancelled")
	ErrOrderAddressLocked   = NewBusinessError("ORDER_ADDRESS_LOCKED", "The delivery address can no longer be changed")
	ErrInvalidPaymentMethod = NewBusinessError("ORDER_INVALID_PAYMENT_METHOD", "Payment method must be cod or vnpay")
)

// ValidPaymentMethod reports whether the method is accepted at checkout
func ValidPaymentMethod(method string) bool {
	return method == PaymentMethodCOD || method == PaymentMethodVNPay
}
