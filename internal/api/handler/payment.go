package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/Rrens/shop-assistant/internal/api/middleware"
	"github.com/Rrens/shop-assistant/internal/api/response"
	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/payment"
	"github.com/Rrens/shop-assistant/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Payments is the payment side of the API
type Payments interface {
	CreatePaymentURL(ctx context.Context, orderID, userID, ipAddress string) (*domain.PaymentLink, error)
	GetByOrderID(ctx context.Context, orderID, userID string) (*domain.Payment, error)
	HandleReturn(ctx context.Context, params url.Values) (*service.PaymentOutcome, error)
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments Payments
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments Payments) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateURL starts a VNPay checkout for one of the caller's orders
func (h *PaymentHandler) CreateURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	orderID := chi.URLParam(r, "orderID")

	link, err := h.payments.CreatePaymentURL(r.Context(), orderID, userID, clientIP(r))
	if err != nil {
		paymentError(w, err, orderID)
		return
	}

	response.Created(w, link)
}

// GetPayment returns the latest payment attempt for an order
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	orderID := chi.URLParam(r, "orderID")

	p, err := h.payments.GetByOrderID(r.Context(), orderID, userID)
	if err != nil {
		paymentError(w, err, orderID)
		return
	}

	response.OK(w, p)
}

// VNPayReturn settles the redirect the gateway sends the shopper back with
func (h *PaymentHandler) VNPayReturn(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.payments.HandleReturn(r.Context(), r.URL.Query())
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		response.BadRequest(w, "invalid signature")
		return
	case errors.Is(err, service.ErrAmountMismatch):
		response.BadRequest(w, "invalid amount")
		return
	case errors.Is(err, domain.ErrPaymentNotFound):
		response.NotFound(w, "payment not found")
		return
	case err != nil:
		log.Error().Err(err).Str("txn_ref", r.URL.Query().Get("vnp_TxnRef")).Msg("Payment return failed")
		response.InternalError(w, "failed to process payment")
		return
	}

	response.OK(w, outcome)
}

func paymentError(w http.ResponseWriter, err error, orderID string) {
	var be *domain.BusinessError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrPaymentNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrPaymentUnauthorized):
		response.Forbidden(w, err.Error())
	case errors.As(err, &be):
		response.BadRequest(w, be.Message)
	default:
		log.Error().Err(err).Str("order_id", orderID).Msg("Payment request failed")
		response.InternalError(w, "payment request failed")
	}
}
