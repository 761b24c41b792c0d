package domain

import (
	"context"
	"time"
)

// Behavior event kinds
const (
	EventProductView    = "product_view"
	EventCartAbandon    = "cart_abandon"
	EventCheckoutStart  = "checkout_start"
	EventPersonalizeReq = "personalization"
)

// BehaviorEvent is a tracked shopper action
type BehaviorEvent struct {
	ID         int64          `json:"id"`
	UserID     string         `json:"userId"`
	SessionID  string         `json:"sessionId,omitempty"`
	EventType  string         `json:"eventType"`
	ProductID  string         `json:"productId,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// BehaviorTracker records behavior events and answers simple aggregates
type BehaviorTracker interface {
	Track(ctx context.Context, event BehaviorEvent) error
	RecentViewers(ctx context.Context, productID string, since time.Time) (int, error)
}

// Notification is a message pushed to a shopper's channel
type Notification struct {
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	OrderID   string         `json:"orderId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Notification types
const (
	NotifyOrderStatus = "order_status"
	NotifyPromotion   = "promotion"
	NotifySupport     = "support"
)

// Notifier publishes notifications to subscribers
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
