package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
)

func vnd(amount float64) string {
	return domain.FormatVND(amount) + "đ"
}

func orderStatusText(status string) string {
	switch status {
	case domain.OrderPending:
		return "Waiting for confirmation"
	case domain.OrderConfirmed:
		return "Confirmed"
	case domain.OrderProcessing:
		return "Processing"
	case domain.OrderShipping, domain.OrderShipped:
		return "Out for delivery"
	case domain.OrderDelivered:
		return "Delivered"
	case domain.OrderCompleted:
		return "Completed"
	case domain.OrderCancelled:
		return "Cancelled"
	case domain.PaymentRefunded:
		return "Refunded"
	}
	return status
}

func paymentStatusText(status string) string {
	switch status {
	case domain.PaymentRecordPending:
		return "Awaiting payment"
	case domain.PaymentRecordCompleted:
		return "Paid"
	case domain.PaymentRecordFailed:
		return "Payment failed"
	case domain.PaymentRefunded:
		return "Refunded"
	}
	return status
}

func timeAgo(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	}
	return fmt.Sprintf("%d days ago", int(d.Hours()/24))
}

// withCategory renders " in <category>" when a category was given
func withCategory(category string) string {
	if category == "" {
		return ""
	}
	return " in " + category
}

func productsData(products []domain.Product, extra map[string]any) map[string]any {
	if products == nil {
		products = []domain.Product{}
	}
	data := map[string]any{"products": products, "total": len(products)}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// categorySlug turns a display name into the slug form used by the catalog
func categorySlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func excludeProducts(products []domain.Product, ids ...string) []domain.Product {
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		skip[id] = true
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !skip[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
