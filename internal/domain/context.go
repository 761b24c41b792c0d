package domain

import (
	"fmt"
	"time"
)

// Conversation states. The first five form the sales funnel; the rest are
// operational states set by individual intents.
const (
	StateDiscovery = "discovery"
	StateInterest  = "interest"
	StateDecision  = "decision"
	StatePurchase  = "purchase"
	StateRetention = "retention"

	StateIdle                      = "idle"
	StateAwaitingProductSelection  = "awaiting_product_selection"
	StateAwaitingOrderConfirmation = "awaiting_order_confirmation"
	StateAwaitingAddressUpdate     = "awaiting_address_update"
	StateAwaitingPaymentMethod     = "awaiting_payment_method"
)

// Context keys with dedicated semantics
const (
	CtxCurrentIntent        = "currentIntent"
	CtxConversationState    = "conversationState"
	CtxFunnelMetadata       = "funnelMetadata"
	CtxEntities             = "entities"
	CtxLastMentionedProduct = "lastMentionedProduct"
	CtxLastMentionedOrder   = "lastMentionedOrder"
	CtxCurrentProduct       = "currentProduct"
	CtxComparisonList       = "comparisonList"
	CtxCartContext          = "cartContext"
	CtxCartState            = "cartState"
	CtxUserPreferences      = "userPreferences"
	CtxLastAction           = "lastAction"
)

// MaxComparisonItems bounds the comparison queue
const MaxComparisonItems = 3

// Context is the mutable working memory attached to a session
type Context map[string]any

// NewContext returns the initial context of a fresh or cleared session
func NewContext(now time.Time) Context {
	return Context{
		CtxCurrentIntent:     nil,
		CtxEntities:          map[string]any{},
		CtxConversationState: StateDiscovery,
		CtxFunnelMetadata: map[string]any{
			"stage":           StateDiscovery,
			"lastStageChange": now,
			"stageHistory":    []any{StateDiscovery},
		},
		CtxCurrentProduct:  nil,
		CtxComparisonList:  []any{},
		CtxCartState:       nil,
		CtxUserPreferences: map[string]any{},
		CtxLastAction:      nil,
	}
}

// Merge applies update on top of c and returns the result. Top-level keys are
// overwritten; the entities map is merged one level deeper so earlier slots survive.
func (c Context) Merge(update Context) Context {
	out := make(Context, len(c)+len(update))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range update {
		out[k] = v
	}

	if raw, ok := update[CtxEntities]; ok {
		if incoming, ok := AsMap(raw); ok {
			merged := map[string]any{}
			if existing, ok := AsMap(c[CtxEntities]); ok {
				for k, v := range existing {
					merged[k] = v
				}
			}
			for k, v := range incoming {
				merged[k] = v
			}
			out[CtxEntities] = merged
		}
	}
	return out
}

// Clone deep-copies maps and slices so the copy can be mutated independently
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	return Context(cloneMap(c))
}

// String returns the value at key when it is a non-empty string
func (c Context) String(key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

// Map returns the value at key as a map
func (c Context) Map(key string) map[string]any {
	m, _ := AsMap(c[key])
	return m
}

func (c Context) ConversationState() string { return c.String(CtxConversationState) }

func (c Context) CurrentIntent() string { return c.String(CtxCurrentIntent) }

func (c Context) LastMentionedProduct() string { return c.String(CtxLastMentionedProduct) }

func (c Context) LastMentionedOrder() string { return c.String(CtxLastMentionedOrder) }

// CurrentProductID returns the id of the product currently in focus
func (c Context) CurrentProductID() string {
	if m := c.Map(CtxCurrentProduct); m != nil {
		if id, ok := m["id"].(string); ok {
			return id
		}
	}
	return ""
}

// Entities returns the slot-filling map, never nil
func (c Context) Entities() map[string]any {
	if m := c.Map(CtxEntities); m != nil {
		return m
	}
	return map[string]any{}
}

// ComparisonList returns the products queued for comparison, oldest first
func (c Context) ComparisonList() []any {
	s, _ := AsSlice(c[CtxComparisonList])
	return s
}

// StageHistory returns the audit trail of funnel stages
func (c Context) StageHistory() []string {
	meta := c.Map(CtxFunnelMetadata)
	if meta == nil {
		return nil
	}
	raw, _ := AsSlice(meta["stageHistory"])
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// AsMap converts the common decoded map shapes into map[string]any
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Context:
		return map[string]any(m), true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// AsSlice converts the common decoded slice shapes into []any
func AsSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	}
	return nil, false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case Context:
		return Context(cloneMap(x))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	}
	return v
}
