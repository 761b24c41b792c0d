package intent

import (
	"context"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/domain"
)

func (h *Handlers) CreatePaymentLink(ctx context.Context, args Args) Result {
	id := h.resolveOrder(ctx, args)
	if id == "" {
		return clarify("Which order would you like to pay for?")
	}
	link, err := h.payments.CreatePaymentURL(ctx, id, args.UserID, args.IPAddress)
	if err != nil {
		return fail(err, "I couldn't create a payment link.")
	}
	return ok(map[string]any{
		"orderId":       id,
		"paymentUrl":    link.PaymentURL,
		"transactionId": link.TransactionID,
		"amount":        link.Amount,
	}, "Your payment link is ready!")
}

func (h *Handlers) CheckPaymentStatus(ctx context.Context, args Args) Result {
	id := h.resolveOrder(ctx, args)
	if id == "" {
		return clarify("Which order's payment should I check?")
	}
	payment, err := h.payments.GetByOrderID(ctx, id, args.UserID)
	if err != nil {
		return fail(err, "I couldn't find payment information for that order.")
	}
	return ok(map[string]any{"payment": payment, "orderId": id, "methods": domain.PaymentMethods},
		fmt.Sprintf("Payment status: %s", paymentStatusText(payment.Status)))
}
