package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/payment"
	"github.com/rs/zerolog/log"
)

// ErrAmountMismatch means a callback amount differs from the recorded payment
var ErrAmountMismatch = errors.New("invalid amount")

// PaymentStore persists payment attempts and their gateway outcome
type PaymentStore interface {
	domain.PaymentRepository
	GetByTransactionID(ctx context.Context, txnRef string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, paymentID, status string, gatewayData map[string]any, at time.Time) error
}

// OrderSettler loads orders and flags them paid
type OrderSettler interface {
	GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) error
}

// PaymentOutcome is the result of a gateway return callback
type PaymentOutcome struct {
	Success bool            `json:"success"`
	Payment *domain.Payment `json:"payment"`
	Message string          `json:"message"`
}

// PaymentService implements domain.PaymentService on top of the VNPay gateway
type PaymentService struct {
	orders   OrderSettler
	payments PaymentStore
	gateway  *payment.Gateway
	now      func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(orders OrderSettler, payments PaymentStore, gateway *payment.Gateway) *PaymentService {
	return &PaymentService{orders: orders, payments: payments, gateway: gateway, now: time.Now}
}

// CreatePaymentURL signs a checkout link for a VNPay order and records the attempt
func (s *PaymentService) CreatePaymentURL(ctx context.Context, orderID, userID, ipAddress string) (*domain.PaymentLink, error) {
	order, err := s.ownedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != domain.PaymentMethodVNPay {
		return nil, domain.ErrPaymentNotVNPay
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return nil, domain.ErrOrderAlreadyPaid
	}

	now := s.now()
	txnRef := fmt.Sprintf("%s_%d", order.ID, now.UnixMilli())
	paymentURL, err := s.gateway.BuildURL(payment.PaymentRequest{
		TxnRef:    txnRef,
		Amount:    order.TotalAmount,
		OrderInfo: "Thanh toan don hang " + order.ID,
		IPAddress: ipAddress,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build payment url: %w", err)
	}

	record := &domain.Payment{
		OrderID:       order.ID,
		UserID:        userID,
		Amount:        order.TotalAmount,
		Status:        domain.PaymentRecordPending,
		PaymentMethod: domain.PaymentMethodVNPay,
		TransactionID: txnRef,
		PaymentURL:    paymentURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("transaction_id", txnRef).
		Msg("Payment link created")

	return &domain.PaymentLink{PaymentURL: paymentURL, TransactionID: txnRef, Amount: order.TotalAmount}, nil
}

// GetByOrderID returns the latest attempt for an order the user owns
func (s *PaymentService) GetByOrderID(ctx context.Context, orderID, userID string) (*domain.Payment, error) {
	if _, err := s.ownedOrder(ctx, orderID, userID); err != nil {
		return nil, err
	}
	return s.payments.GetByOrderID(ctx, orderID)
}

// HandleReturn verifies a gateway callback and settles the order on success
func (s *PaymentService) HandleReturn(ctx context.Context, params url.Values) (*PaymentOutcome, error) {
	if err := s.gateway.Verify(params); err != nil {
		return nil, err
	}

	record, err := s.payments.GetByTransactionID(ctx, params.Get("vnp_TxnRef"))
	if err != nil {
		return nil, err
	}
	if amount, err := payment.ParseAmount(params.Get("vnp_Amount")); err != nil || amount != record.Amount {
		return nil, ErrAmountMismatch
	}
	if record.Status == domain.PaymentRecordCompleted {
		return &PaymentOutcome{Success: true, Payment: record, Message: "Payment already confirmed"}, nil
	}

	success := params.Get("vnp_ResponseCode") == payment.ResponseSuccess &&
		params.Get("vnp_TransactionStatus") == payment.ResponseSuccess

	status := domain.PaymentRecordFailed
	if success {
		status = domain.PaymentRecordCompleted
	}
	gatewayData := make(map[string]any, len(params))
	for k := range params {
		gatewayData[k] = params.Get(k)
	}

	now := s.now()
	if err := s.payments.UpdateStatus(ctx, record.ID, status, gatewayData, now); err != nil {
		return nil, err
	}
	record.Status = status
	record.GatewayData = gatewayData
	record.PaymentDate = &now

	if success {
		if err := s.orders.MarkPaid(ctx, record.OrderID); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("order_id", record.OrderID).
		Str("transaction_id", record.TransactionID).
		Bool("success", success).
		Msg("Payment callback processed")

	msg := "Payment failed"
	if success {
		msg = "Payment successful"
	}
	return &PaymentOutcome{Success: success, Payment: record, Message: msg}, nil
}

func (s *PaymentService) ownedOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID, userID)
	if errors.Is(err, domain.ErrForbidden) {
		return nil, domain.ErrPaymentUnauthorized
	}
	return order, err
}
