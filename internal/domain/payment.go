package domain

import (
	"context"
	"time"
)

// Payment record statuses
const (
	PaymentRecordPending   = "pending"
	PaymentRecordCompleted = "completed"
	PaymentRecordFailed    = "failed"
)

// Payment tracks a settlement attempt for an order
type Payment struct {
	ID            string         `json:"id"`
	OrderID       string         `json:"orderId"`
	UserID        string         `json:"userId"`
	Amount        float64        `json:"amount"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"paymentMethod"`
	TransactionID string         `json:"transactionId,omitempty"`
	PaymentURL    string         `json:"paymentUrl,omitempty"`
	GatewayData   map[string]any `json:"gatewayData,omitempty"`
	PaymentDate   *time.Time     `json:"paymentDate,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// PaymentLink is a hosted checkout URL
type PaymentLink struct {
	PaymentURL    string  `json:"paymentUrl"`
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
}

// PaymentMethodInfo describes an accepted payment method
type PaymentMethodInfo struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PaymentMethods is the fixed list of accepted methods
var PaymentMethods = []PaymentMethodInfo{
	{Code: PaymentMethodCOD, Name: "Cash on delivery", Description: "Pay in cash when the parcel arrives"},
	{Code: PaymentMethodVNPay, Name: "VNPay", Description: "Pay online by card or banking app through VNPay"},
}

var (
	ErrPaymentUnauthorized = NewBusinessError("PAYMENT_FORBIDDEN", "Unauthorized access to order")
	ErrPaymentNotVNPay     = NewBusinessError("PAYMENT_NOT_VNPAY", "Order payment method is not VNPay")
	ErrOrderAlreadyPaid    = NewBusinessError("PAYMENT_ALREADY_PAID", "Order has already been paid")
)

// PaymentRepository persists payment records
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
}

// PaymentService is the payment collaborator consumed by intent handlers
type PaymentService interface {
	CreatePaymentURL(ctx context.Context, orderID, userID, ipAddress string) (*PaymentLink, error)
	GetByOrderID(ctx context.Context, orderID, userID string) (*Payment, error)
}
