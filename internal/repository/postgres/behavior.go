package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BehaviorRepository implements domain.BehaviorTracker
type BehaviorRepository struct {
	pool *pgxpool.Pool
}

// NewBehaviorRepository creates a new behavior repository
func NewBehaviorRepository(pool *pgxpool.Pool) *BehaviorRepository {
	return &BehaviorRepository{pool: pool}
}

// Track inserts a behavior event
func (r *BehaviorRepository) Track(ctx context.Context, event domain.BehaviorEvent) error {
	query := `
		INSERT INTO behavior_events (user_id, session_id, event_type, product_id, properties, created_at)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6)
	`

	properties := event.Properties
	if properties == nil {
		properties = map[string]any{}
	}
	propsJSON, err := json.Marshal(properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.pool.Exec(ctx, query,
		event.UserID,
		event.SessionID,
		event.EventType,
		event.ProductID,
		propsJSON,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to track event: %w", err)
	}
	return nil
}

// RecentViewers counts distinct shoppers who viewed the product since the given time
func (r *BehaviorRepository) RecentViewers(ctx context.Context, productID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM behavior_events
		WHERE product_id = $1 AND event_type = $2 AND created_at >= $3
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, productID, domain.EventProductView, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count viewers: %w", err)
	}
	return count, nil
}
