package service

import "github.com/Rrens/shop-assistant/internal/domain"

// Current intents recorded after successful function calls
const (
	IntentProductSearch  = "product_search"
	IntentProductDetails = "product_details"
	IntentCartManagement = "cart_management"
	IntentCartView       = "cart_view"
	IntentOrderTracking  = "order_tracking"
)

var (
	productSearchSuggestions = []string{"View details of this product", "Add to cart", "Find other products", "Compare prices"}
	cartViewSuggestions      = []string{"Checkout now", "Apply discount code", "Update quantity", "Remove item"}
	orderTrackingSuggestions = []string{"Cancel order", "Update address", "Pay for order", "View other orders"}
	defaultSuggestions       = []string{"Find products", "View cart", "My orders", "Discount codes"}
)

// GetSuggestions returns quick replies for a context. The conversation state
// wins over the current intent; anything unrecognized gets the default list.
func GetSuggestions(c domain.Context) []string {
	for _, key := range []string{c.ConversationState(), c.CurrentIntent()} {
		if list := suggestionsFor(key); list != nil {
			return append([]string(nil), list...)
		}
	}
	return append([]string(nil), defaultSuggestions...)
}

func suggestionsFor(key string) []string {
	switch key {
	case IntentProductSearch, domain.StateAwaitingProductSelection:
		return productSearchSuggestions
	case IntentCartView:
		return cartViewSuggestions
	case IntentOrderTracking:
		return orderTrackingSuggestions
	}
	return nil
}
