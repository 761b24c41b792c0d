package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/rs/zerolog/log"
)

// Notifier publishes shopper notifications on a per-user pub/sub channel
type Notifier struct {
	client *Client
	prefix string
	now    func() time.Time
}

// NewNotifier creates a notifier publishing to "<prefix>:<userId>"
func NewNotifier(client *Client, prefix string) *Notifier {
	if prefix == "" {
		prefix = "notifications"
	}
	return &Notifier{client: client, prefix: prefix, now: time.Now}
}

// Channel returns the channel a user's notifications are published on
func (n *Notifier) Channel(userID string) string {
	return fmt.Sprintf("%s:%s", n.prefix, userID)
}

// Notify publishes n to the target user's channel
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	if note.UserID == "" {
		return fmt.Errorf("notification has no target user")
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = n.now()
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	receivers, err := n.client.rdb.Publish(ctx, n.Channel(note.UserID), payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	log.Debug().
		Str("user_id", note.UserID).
		Str("type", note.Type).
		Int64("receivers", receivers).
		Msg("Notification published")
	return nil
}
