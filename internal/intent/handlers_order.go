package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/shop-assistant/internal/domain"
)

// Shipping fee table for the chat estimate
const (
	baseShippingFee    = 30000
	distantShippingFee = 20000
)

var distantCities = []string{"Cần Thơ", "Đà Nẵng", "Huế", "Nha Trang"}

func statusRank(status string) int {
	switch status {
	case domain.OrderConfirmed, domain.OrderProcessing:
		return 1
	case domain.OrderShipping, domain.OrderShipped:
		return 2
	case domain.OrderCompleted, domain.OrderDelivered:
		return 3
	case domain.OrderCancelled:
		return -1
	}
	return 0
}

// orderTimeline renders the four delivery stages for an order
func orderTimeline(o *domain.Order) []map[string]any {
	rank := statusRank(o.Status)

	confirmed := "cancelled"
	switch {
	case rank >= 1:
		confirmed = "completed"
	case rank == 0:
		confirmed = "active"
	}

	shipping := "pending"
	switch {
	case rank >= 2:
		shipping = "completed"
	case rank == 1:
		shipping = "active"
	case rank == -1:
		shipping = "cancelled"
	}

	completed := "pending"
	switch rank {
	case 3:
		completed = "completed"
	case -1:
		completed = "cancelled"
	}

	return []map[string]any{
		{"stage": "Placed", "date": o.CreatedAt, "status": "completed"},
		{"stage": "Confirmed", "date": o.ConfirmedAt, "status": confirmed},
		{"stage": "Shipping", "date": o.ShippedAt, "status": shipping},
		{"stage": "Completed", "date": o.DeliveredAt, "status": completed},
	}
}

type orderAction struct {
	Action string `json:"action"`
	Label  string `json:"label"`
}

func orderActions(status string) []orderAction {
	switch status {
	case domain.OrderPending:
		return []orderAction{{FnCancelOrder, "Cancel order"}}
	case domain.OrderConfirmed, domain.OrderProcessing, domain.OrderShipping, domain.OrderShipped:
		return []orderAction{{FnCheckOrderStatus, "Track order"}}
	case domain.OrderCompleted, domain.OrderDelivered:
		return []orderAction{
			{FnCreateProductReview, "Review products"},
			{FnReorderPastPurchase, "Buy again"},
			{FnRecommendProducts, "Similar products"},
		}
	case domain.OrderCancelled:
		return []orderAction{{FnSearchProducts, "Find other products"}}
	}
	return []orderAction{}
}

func (h *Handlers) GetUserOrders(ctx context.Context, args Args) Result {
	page, err := h.orders.ListUserOrders(ctx, args.UserID, args.Limit(5))
	if err != nil {
		return fail(err, "I couldn't load your orders.")
	}
	if page.Orders == nil {
		page.Orders = []domain.Order{}
	}
	return ok(page, fmt.Sprintf("You have %d orders.", page.TotalItems))
}

func (h *Handlers) GetOrderDetails(ctx context.Context, args Args) Result {
	id := h.resolveOrder(ctx, args)
	if id == "" {
		return clarify("Which order would you like to see? Please give me the order ID.")
	}
	order, err := h.orders.GetOrder(ctx, id, args.UserID)
	if err != nil {
		return fail(err, "I couldn't load the order details.")
	}

	items := make([]map[string]any, len(order.Items))
	for i, it := range order.Items {
		items[i] = map[string]any{
			"productId": it.ProductID,
			"variantId": it.VariantID,
			"name":      it.Name,
			"quantity":  it.Quantity,
			"price":     it.UnitPrice(),
			"subtotal":  it.UnitPrice() * float64(it.Quantity),
		}
	}
	return ok(map[string]any{
		"order": map[string]any{
			"id":              order.ID,
			"status":          order.Status,
			"paymentStatus":   order.PaymentStatus,
			"paymentMethod":   order.PaymentMethod,
			"createdAt":       order.CreatedAt,
			"subtotal":        order.Subtotal,
			"shippingFee":     order.ShippingFee,
			"discountAmount":  order.DiscountAmount,
			"totalAmount":     order.TotalAmount,
			"shippingAddress": order.ShippingAddress,
		},
		"orderId":          order.ID,
		"items":            items,
		"timeline":         orderTimeline(order),
		"suggestedActions": orderActions(order.Status),
	}, fmt.Sprintf("Order #%s: %s - %s", order.ShortID(), orderStatusText(order.Status), vnd(order.TotalAmount)))
}

func (h *Handlers) CheckOrderStatus(ctx context.Context, args Args) Result {
	id := h.resolveOrder(ctx, args)
	if id == "" {
		recent := args
		recent.Values = map[string]any{"limit": 3}
		return h.GetUserOrders(ctx, recent)
	}
	order, err := h.orders.GetOrder(ctx, id, args.UserID)
	if err != nil {
		return fail(err, "I couldn't find that order, or you don't have access to it.")
	}
	return ok(map[string]any{
		"orderId":         order.ID,
		"status":          order.Status,
		"paymentStatus":   order.PaymentStatus,
		"totalAmount":     order.TotalAmount,
		"items":           order.Items,
		"shippingAddress": order.ShippingAddress,
	}, fmt.Sprintf("Order #%s is currently: %s", order.ShortID(), orderStatusText(order.Status)))
}

func (h *Handlers) CancelOrder(ctx context.Context, args Args) Result {
	id := h.resolveOrder(ctx, args)
	if id == "" {
		return clarify("Which order would you like to cancel?")
	}
	order, err := h.orders.CancelOrder(ctx, id, args.UserID, args.String("reason"))
	if err != nil {
		return fail(err, "I couldn't cancel that order.")
	}

	h.notify(ctx, domain.Notification{
		UserID:  args.UserID,
		Type:    domain.NotifyOrderStatus,
		Title:   "Order cancelled",
		Message: fmt.Sprintf("Order #%s has been cancelled.", order.ShortID()),
		OrderID: order.ID,
		Data:    map[string]any{"status": order.Status},
	})
	return ok(map[string]any{"order": order, "orderId": order.ID}, "Your order has been cancelled.")
}

// userAddress picks a saved address by id, falling back to the default one
func (h *Handlers) userAddress(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	addresses, err := h.users.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	u := domain.User{Addresses: addresses}
	if addressID != "" {
		if a, found := u.FindAddress(addressID); found {
			return a, nil
		}
		return nil, domain.ErrAddressNotFound
	}
	if a, found := u.DefaultAddress(); found {
		return a, nil
	}
	return nil, domain.ErrAddressNotFound
}

func (h *Handlers) CreateOrderFromCart(ctx context.Context, args Args) Result {
	cart, err := h.carts.GetCart(ctx, args.UserID)
	if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return fail(err, "I couldn't load your cart.")
	}
	if cart.IsEmpty() {
		return clarify("Your cart is empty.")
	}

	addr, err := h.userAddress(ctx, args.UserID, args.String("addressId"))
	if errors.Is(err, domain.ErrAddressNotFound) {
		return clarify("Which delivery address should I use? You can add a new one first.")
	}
	if err != nil {
		return fail(err, "I couldn't load your delivery addresses.")
	}

	method := args.String("paymentMethod")
	if method == "" {
		method = domain.PaymentMethodCOD
	}
	itemIDs := make([]string, len(cart.Items))
	for i, it := range cart.Items {
		itemIDs[i] = it.ID
	}

	order, err := h.orders.CreateOrder(ctx, args.UserID, domain.OrderInput{
		CartItemIDs:     itemIDs,
		ShippingAddress: addr.Shipping(),
		PaymentMethod:   method,
		DiscountCode:    args.String("voucherCode"),
		Note:            args.String("note"),
	})
	if err != nil {
		return fail(err, "I couldn't place your order.")
	}
	if err := h.carts.Clear(ctx, args.UserID); err != nil {
		return fail(err, "Your order was placed but I couldn't clear your cart.")
	}

	h.track(ctx, args, domain.EventCheckoutStart, "", map[string]any{"orderId": order.ID})
	return ok(map[string]any{"order": order, "orderId": order.ID},
		fmt.Sprintf("Order #%s has been placed! Total %s.", order.ShortID(), vnd(order.TotalAmount)))
}

func (h *Handlers) UpdateShippingAddress(ctx context.Context, args Args) Result {
	id := h.resolveOrder(ctx, args)
	if id == "" {
		return clarify("Which order should I update the address for?")
	}
	addr, err := h.userAddress(ctx, args.UserID, args.String("addressId"))
	if errors.Is(err, domain.ErrAddressNotFound) {
		return clarify("I couldn't find that delivery address.")
	}
	if err != nil {
		return fail(err, "I couldn't load your delivery addresses.")
	}
	order, err := h.orders.UpdateShippingAddress(ctx, id, args.UserID, addr.Shipping())
	if err != nil {
		return fail(err, "I couldn't update the shipping address.")
	}
	return ok(map[string]any{"order": order, "orderId": order.ID},
		fmt.Sprintf("Order #%s will be delivered to %s.", order.ShortID(), addr.Address))
}

func (h *Handlers) ReorderPastPurchase(ctx context.Context, args Args) Result {
	id := h.resolveOrder(ctx, args)
	if id == "" {
		return clarify("Which order would you like to buy again?")
	}
	order, err := h.orders.GetOrder(ctx, id, args.UserID)
	if err != nil {
		return fail(err, "I couldn't find that order.")
	}

	var (
		cart    *domain.Cart
		skipped []string
	)
	for _, it := range order.Items {
		c, err := h.carts.AddItem(ctx, args.UserID, domain.CartItemInput{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
		if err != nil {
			skipped = append(skipped, it.Name)
			continue
		}
		cart = c
	}
	if cart == nil {
		return clarify("None of the products from that order are available anymore.")
	}

	data := cartData(cart)
	data["orderId"] = order.ID
	data["skipped"] = skipped
	msg := fmt.Sprintf("Added the products from order #%s back to your cart.", order.ShortID())
	if len(skipped) > 0 {
		msg += " Unavailable: " + strings.Join(skipped, ", ") + "."
	}
	return ok(data, msg)
}

func shippingFeeFor(city string) float64 {
	fee := float64(baseShippingFee)
	for _, c := range distantCities {
		if strings.Contains(city, c) {
			fee += distantShippingFee
			break
		}
	}
	return fee
}

func (h *Handlers) CalculateShippingFee(ctx context.Context, args Args) Result {
	city := args.String("city")
	district := ""
	if city == "" {
		addr, err := h.userAddress(ctx, args.UserID, args.String("addressId"))
		if errors.Is(err, domain.ErrAddressNotFound) {
			return clarify("Which city should I deliver to?")
		}
		if err != nil {
			return fail(err, "I couldn't calculate the shipping fee.")
		}
		city, district = addr.City, addr.District
	}
	fee := shippingFeeFor(city)
	return ok(map[string]any{"city": city, "district": district, "shippingFee": fee},
		fmt.Sprintf("Shipping to %s costs %s.", city, vnd(fee)))
}
