package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Discount kinds
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Discount is a voucher code
type Discount struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"`
	Description        string    `json:"description,omitempty"`
	Type               string    `json:"discountType"`
	Value              float64   `json:"discountValue"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	ApplicableProducts []string  `json:"applicableProducts,omitempty"`
	MinOrderValue      float64   `json:"minOrderValue"`
	UsageLimit         int       `json:"usageLimit"`
	UsedCount          int       `json:"usedCount"`
	IsActive           bool      `json:"isActive"`
}

// DiscountApplication is the outcome of applying a voucher to an order total
type DiscountApplication struct {
	Discount       *Discount `json:"discount"`
	DiscountAmount float64   `json:"discountAmount"`
	FinalTotal     float64   `json:"finalTotal"`
}

// Voucher rejection codes
const (
	CodeDiscountInvalid       = "DISCOUNT_INVALID"
	CodeDiscountInactive      = "DISCOUNT_INACTIVE"
	CodeDiscountExpired       = "DISCOUNT_EXPIRED"
	CodeDiscountExhausted     = "DISCOUNT_EXHAUSTED"
	CodeDiscountMinOrder      = "DISCOUNT_MIN_ORDER"
	CodeDiscountNotApplicable = "DISCOUNT_NOT_APPLICABLE"
)

// ErrDiscountInvalid is returned when no voucher matches the code
var ErrDiscountInvalid = NewBusinessError(CodeDiscountInvalid, "Invalid discount code")

// Validate checks the voucher can be used now for the given order
func (d *Discount) Validate(orderTotal float64, productIDs []string, now time.Time) error {
	if !d.IsActive {
		return NewBusinessError(CodeDiscountInactive, "Discount code is not active")
	}
	if now.Before(d.StartDate) || now.After(d.EndDate) {
		return NewBusinessError(CodeDiscountExpired, "Discount code is expired or not yet valid")
	}
	if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
		return NewBusinessError(CodeDiscountExhausted, "Discount code usage limit reached")
	}
	if orderTotal < d.MinOrderValue {
		return NewBusinessError(CodeDiscountMinOrder,
			fmt.Sprintf("Minimum order value of %s VND required", FormatVND(d.MinOrderValue)))
	}
	if len(d.ApplicableProducts) > 0 && len(productIDs) > 0 {
		allowed := make(map[string]bool, len(d.ApplicableProducts))
		for _, id := range d.ApplicableProducts {
			allowed[id] = true
		}
		match := false
		for _, id := range productIDs {
			if allowed[id] {
				match = true
				break
			}
		}
		if !match {
			return NewBusinessError(CodeDiscountNotApplicable, "Discount not applicable to selected products")
		}
	}
	return nil
}

// Amount computes the reduction for orderTotal, never exceeding it
func (d *Discount) Amount(orderTotal float64) float64 {
	total := decimal.NewFromFloat(orderTotal)
	var amount decimal.Decimal
	switch d.Type {
	case DiscountPercent:
		amount = total.Mul(decimal.NewFromFloat(d.Value)).Div(decimal.NewFromInt(100))
	default:
		amount = decimal.NewFromFloat(d.Value)
	}
	if amount.GreaterThan(total) {
		amount = total
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(0).InexactFloat64()
}

// Apply validates the voucher and computes the resulting totals
func (d *Discount) Apply(orderTotal float64, productIDs []string, now time.Time) (*DiscountApplication, error) {
	if err := d.Validate(orderTotal, productIDs, now); err != nil {
		return nil, err
	}
	amount := d.Amount(orderTotal)
	final := decimal.NewFromFloat(orderTotal).Sub(decimal.NewFromFloat(amount))
	return &DiscountApplication{
		Discount:       d,
		DiscountAmount: amount,
		FinalTotal:     final.InexactFloat64(),
	}, nil
}

// Label renders the voucher value for display, e.g. "10%" or "50.000 VND"
func (d *Discount) Label() string {
	if d.Type == DiscountPercent {
		return decimal.NewFromFloat(d.Value).String() + "%"
	}
	return FormatVND(d.Value) + " VND"
}

// FormatVND groups thousands with dots, the way prices are printed to shoppers
func FormatVND(amount float64) string {
	s := decimal.NewFromFloat(amount).Round(0).String()
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// DiscountService is the voucher collaborator consumed by intent handlers
type DiscountService interface {
	ApplyDiscount(ctx context.Context, code string, orderTotal float64, productIDs []string) (*DiscountApplication, error)
	ListActive(ctx context.Context, limit int) ([]Discount, error)
}
