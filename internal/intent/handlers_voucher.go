package intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/domain"
)

// activeVoucherScan bounds how many vouchers get tried for the best deal
const activeVoucherScan = 20

// loadCart returns the shopper's cart, treating a missing cart as empty
func (h *Handlers) loadCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := h.carts.GetCart(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) || (err == nil && cart == nil) {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	return cart, err
}

func (h *Handlers) ValidateVoucher(ctx context.Context, args Args) Result {
	code := args.String("voucherCode")
	if code == "" {
		return clarify("Which voucher code would you like to check?")
	}

	total, given := args.Float("orderTotal")
	var productIDs []string
	if !given {
		cart, err := h.loadCart(ctx, args.UserID)
		if err != nil {
			return fail(err, "I couldn't load your cart.")
		}
		if cart.IsEmpty() {
			return clarify("Your cart is empty. Tell me the order total or add some products first.")
		}
		total, productIDs = cart.TotalAmount, cart.ProductIDs()
	}

	applied, err := h.discounts.ApplyDiscount(ctx, code, total, productIDs)
	if err != nil {
		return fail(err, "That voucher code is not valid.")
	}
	return ok(applied, fmt.Sprintf("Code %s is valid! You save %s", code, vnd(applied.DiscountAmount)))
}

func (h *Handlers) GetBestVoucher(ctx context.Context, args Args) Result {
	cart, err := h.loadCart(ctx, args.UserID)
	if err != nil {
		return fail(err, "I couldn't load your cart.")
	}
	if cart.IsEmpty() {
		return clarify("Your cart is empty. Add some products first and I'll find the best voucher.")
	}

	vouchers, err := h.discounts.ListActive(ctx, activeVoucherScan)
	if err != nil {
		return fail(err, "I couldn't find the best voucher.")
	}

	var best *domain.DiscountApplication
	productIDs := cart.ProductIDs()
	for _, v := range vouchers {
		applied, err := h.discounts.ApplyDiscount(ctx, v.Code, cart.TotalAmount, productIDs)
		if err != nil {
			continue
		}
		if best == nil || applied.DiscountAmount > best.DiscountAmount {
			best = applied
		}
	}
	if best == nil || best.DiscountAmount <= 0 {
		return clarify("No voucher applies to your current cart.")
	}
	return ok(map[string]any{
		"voucher":    best.Discount,
		"discount":   best.DiscountAmount,
		"finalTotal": best.FinalTotal,
	}, fmt.Sprintf("Best voucher: %s - save %s", best.Discount.Code, vnd(best.DiscountAmount)))
}

func (h *Handlers) GetUserVouchers(ctx context.Context, args Args) Result {
	vouchers, err := h.discounts.ListActive(ctx, 10)
	if err != nil {
		return fail(err, "I couldn't load your vouchers.")
	}
	items := make([]map[string]any, len(vouchers))
	for i := range vouchers {
		v := &vouchers[i]
		items[i] = map[string]any{
			"code":          v.Code,
			"description":   v.Description,
			"value":         v.Label(),
			"minOrderValue": v.MinOrderValue,
			"endDate":       v.EndDate,
		}
	}
	return ok(map[string]any{"vouchers": items, "total": len(items)},
		fmt.Sprintf("You have %d vouchers available!", len(items)))
}

func (h *Handlers) ApplyVoucherToCart(ctx context.Context, args Args) Result {
	code := args.String("voucherCode")
	if code == "" {
		return clarify("Which voucher code would you like to apply?")
	}
	cart, err := h.loadCart(ctx, args.UserID)
	if err != nil {
		return fail(err, "I couldn't load your cart.")
	}
	if cart.IsEmpty() {
		return clarify("Your cart is empty.")
	}
	applied, err := h.discounts.ApplyDiscount(ctx, code, cart.TotalAmount, cart.ProductIDs())
	if err != nil {
		return fail(err, "That voucher code is not valid.")
	}
	return ok(map[string]any{
		"originalAmount": cart.TotalAmount,
		"discountAmount": applied.DiscountAmount,
		"finalAmount":    applied.FinalTotal,
		"voucherCode":    code,
	}, fmt.Sprintf("Applied %s! You save %s", code, vnd(applied.DiscountAmount)))
}
