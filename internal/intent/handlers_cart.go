package intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/domain"
)

func cartData(cart *domain.Cart) map[string]any {
	if cart == nil {
		cart = &domain.Cart{Items: []domain.CartItem{}}
	}
	return map[string]any{"cart": cart, "itemCount": cart.ItemCount()}
}

func (h *Handlers) AddToCart(ctx context.Context, args Args) Result {
	id := h.resolveProduct(ctx, args, "productId")
	if id == "" {
		return clarify("Which product would you like to add to your cart? Please tell me its name.")
	}
	quantity := args.Int("quantity", 1)
	if quantity <= 0 {
		quantity = 1
	}

	product, err := h.catalog.FindByID(ctx, id)
	if err != nil {
		return fail(err, "I couldn't find that product.")
	}

	variantID := args.String("variantId")
	stock := product.TotalStock()
	if variantID != "" {
		v, found := product.FindVariant(variantID)
		if !found {
			return clarify(fmt.Sprintf("%s doesn't come in that option. Which size or color would you like?", product.Name))
		}
		stock = v.Stock
	} else if len(product.Variants) == 1 {
		variantID = product.Variants[0].ID
	}
	if stock <= 0 {
		return clarify(fmt.Sprintf("Sorry, %s is out of stock.", product.Name))
	}
	if stock < quantity {
		return clarify(fmt.Sprintf("Only %d of %s left in stock.", stock, product.Name))
	}

	cart, err := h.carts.AddItem(ctx, args.UserID, domain.CartItemInput{
		ProductID: product.ID,
		VariantID: variantID,
		Quantity:  quantity,
	})
	if err != nil {
		return fail(err, "I couldn't add that product to your cart.")
	}
	data := cartData(cart)
	data["product"] = product.Summary()
	data["quantity"] = quantity
	return ok(data, fmt.Sprintf("Added %d x %s to your cart.", quantity, product.Name))
}

func (h *Handlers) ViewCart(ctx context.Context, args Args) Result {
	cart, err := h.carts.GetCart(ctx, args.UserID)
	if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return fail(err, "I couldn't load your cart.")
	}
	if cart.IsEmpty() {
		return ok(cartData(nil), "Your cart is empty.")
	}
	return ok(cartData(cart), fmt.Sprintf("Your cart has %d items, total %s.", cart.ItemCount(), vnd(cart.TotalAmount)))
}

func (h *Handlers) RemoveFromCart(ctx context.Context, args Args) Result {
	ref := h.resolveProduct(ctx, args, "productId")
	if ref == "" {
		return clarify("Which product should I remove from your cart?")
	}
	cart, err := h.carts.RemoveItem(ctx, args.UserID, ref)
	if errors.Is(err, domain.ErrCartItemNotFound) || errors.Is(err, domain.ErrCartNotFound) {
		return clarify("That product is not in your cart.")
	}
	if err != nil {
		return fail(err, "I couldn't remove that product from your cart.")
	}
	return ok(cartData(cart), "Removed the product from your cart.")
}

func (h *Handlers) UpdateCartItem(ctx context.Context, args Args) Result {
	ref := h.resolveProduct(ctx, args, "productId")
	if ref == "" {
		return clarify("Which product in your cart should I update?")
	}
	quantity, given := args.Float("quantity")
	if !given {
		return clarify("How many would you like?")
	}
	if quantity <= 0 {
		return h.RemoveFromCart(ctx, args)
	}
	cart, err := h.carts.UpdateItem(ctx, args.UserID, ref, int(quantity))
	if errors.Is(err, domain.ErrCartItemNotFound) || errors.Is(err, domain.ErrCartNotFound) {
		return clarify("That product is not in your cart.")
	}
	if err != nil {
		return fail(err, "I couldn't update your cart.")
	}
	return ok(cartData(cart), fmt.Sprintf("Updated the quantity to %d.", int(quantity)))
}
