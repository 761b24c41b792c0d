package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// annotatedProducts caps how many products of a result are replayed to the model
	annotatedProducts   = 3
	defaultHistoryLimit = 10
)

// ContextManager owns sessions, their message log and conversation context.
// Every read-modify-write of a session runs under that session's lock.
type ContextManager struct {
	repo  domain.SessionRepository
	locks *keyLock
	ttl   time.Duration
	now   func() time.Time
}

// NewContextManager creates a context manager over repo
func NewContextManager(repo domain.SessionRepository, ttl time.Duration) *ContextManager {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &ContextManager{
		repo:  repo,
		locks: newKeyLock(),
		ttl:   ttl,
		now:   time.Now,
	}
}

// GetOrCreateSession resumes the caller's live session or starts a new one.
// A session owned by someone else, deactivated or past its expiry is treated
// as absent.
func (m *ContextManager) GetOrCreateSession(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error) {
	now := m.now()
	if sessionID != "" {
		s, err := m.repo.Get(ctx, sessionID)
		switch {
		case err == nil && s.UserID == userID && s.Live(now):
			return s, nil
		case err != nil && !errors.Is(err, domain.ErrSessionNotFound):
			return nil, fmt.Errorf("failed to get/create session: %w", err)
		}
	}

	s := domain.NewChatSession(userID, now, m.ttl)
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to get/create session: %w", err)
	}
	log.Debug().Str("session_id", s.SessionID).Str("user_id", userID).Msg("chat session created")
	return s, nil
}

// GetSession returns a live session
func (m *ContextManager) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	s, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Live(m.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// mutate loads a live session, applies fn and saves it with a refreshed expiry
func (m *ContextManager) mutate(ctx context.Context, sessionID string, fn func(s *domain.ChatSession) error) (*domain.ChatSession, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	s, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Context == nil {
		s.Context = domain.NewContext(m.now())
	}
	if err := fn(s); err != nil {
		return nil, err
	}

	s.Touch(m.now(), m.ttl)
	if err := m.repo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}

// AddMessage appends a message to the session log
func (m *ContextManager) AddMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string, metadata map[string]any) error {
	if !role.Valid() {
		return fmt.Errorf("invalid message role %q", role)
	}
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		s.Messages = append(s.Messages, domain.Message{
			ID:        uuid.NewString(),
			Role:      role,
			Content:   content,
			Metadata:  metadata,
			CreatedAt: m.now(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

// GetConversationHistory returns the last limit messages as model input.
// Messages whose function result listed products get a trailing note with
// their ids so follow-up references can be resolved. Unknown sessions yield
// an empty history.
func (m *ContextManager) GetConversationHistory(ctx context.Context, sessionID string, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	s, err := m.GetSession(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return []domain.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	msgs := s.Messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	history := make([]domain.HistoryEntry, len(msgs))
	for i, msg := range msgs {
		history[i] = domain.HistoryEntry{Role: msg.Role, Content: msg.Content + productAnnotation(msg.Metadata)}
	}
	return history, nil
}

func productAnnotation(metadata map[string]any) string {
	result, ok := domain.AsMap(metadata[domain.MetaFunctionResult])
	if !ok {
		return ""
	}
	data, ok := domain.AsMap(result["data"])
	if !ok {
		return ""
	}

	if products, ok := domain.AsSlice(data["products"]); ok {
		if len(products) == 0 {
			return ""
		}
		products = products[:min(len(products), annotatedProducts)]
		parts := make([]string, 0, len(products))
		for _, raw := range products {
			p, _ := domain.AsMap(raw)
			parts = append(parts, fmt.Sprintf(`[ID: %v, Name: "%v", Price: %sđ]`, p["id"], p["name"], domain.FormatVND(displayPrice(p))))
		}
		return "\n[System Context - Products shown: " + strings.Join(parts, ", ") + "]"
	}

	if p, ok := domain.AsMap(data["product"]); ok {
		return fmt.Sprintf("\n[System Context - Product shown: ID: %v, Name: \"%v\"]", p["id"], p["name"])
	}
	return ""
}

// displayPrice reads the price of a decoded product: first variant, then the
// product price object, then a bare number.
func displayPrice(p map[string]any) float64 {
	if variants, ok := domain.AsSlice(p["variants"]); ok && len(variants) > 0 {
		if v, ok := domain.AsMap(variants[0]); ok {
			if price, ok := priceOf(v["price"]); ok {
				return price
			}
		}
	}
	price, _ := priceOf(p["price"])
	return price
}

func priceOf(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case map[string]any:
		if d, ok := x["discountPrice"].(float64); ok && d > 0 {
			return d, true
		}
		if c, ok := x["currentPrice"].(float64); ok {
			return c, true
		}
	}
	return 0, false
}

// UpdateContext merges update into the session context
func (m *ContextManager) UpdateContext(ctx context.Context, sessionID string, update domain.Context) (domain.Context, error) {
	s, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		s.Context = s.Context.Merge(update)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update context: %w", err)
	}
	return s.Context, nil
}

// GetContext returns a copy of the session context
func (m *ContextManager) GetContext(ctx context.Context, sessionID string) (domain.Context, error) {
	s, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Context.Clone(), nil
}

// UpdateConversationState sets conversationState
func (m *ContextManager) UpdateConversationState(ctx context.Context, sessionID, state string) error {
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		s.Context[domain.CtxConversationState] = state
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update conversation state: %w", err)
	}
	return nil
}

// UpdateFunnelStage moves the session to a funnel stage and appends it to the
// stage history. Extra metadata keys are merged into funnelMetadata.
func (m *ContextManager) UpdateFunnelStage(ctx context.Context, sessionID, stage string, metadata map[string]any) error {
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		funnel := map[string]any{}
		for k, v := range s.Context.Map(domain.CtxFunnelMetadata) {
			funnel[k] = v
		}
		history := s.Context.StageHistory()
		stages := make([]any, 0, len(history)+1)
		for _, h := range history {
			stages = append(stages, h)
		}

		funnel["stage"] = stage
		funnel["lastStageChange"] = m.now()
		funnel["stageHistory"] = append(stages, stage)
		for k, v := range metadata {
			if k == "stageHistory" {
				continue
			}
			funnel[k] = v
		}

		s.Context[domain.CtxConversationState] = stage
		s.Context[domain.CtxFunnelMetadata] = funnel
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update funnel stage: %w", err)
	}
	return nil
}

// StoreEntity sets one slot in the entities map
func (m *ContextManager) StoreEntity(ctx context.Context, sessionID, name string, value any) error {
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		entities := s.Context.Entities()
		entities[name] = value
		s.Context[domain.CtxEntities] = entities
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store entity: %w", err)
	}
	return nil
}

// GetEntity reads a slot from the entities map, nil when unset
func (m *ContextManager) GetEntity(ctx context.Context, sessionID, name string) (any, error) {
	c, err := m.GetContext(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.Entities()[name], nil
}

// StoreConversationEntity stores data under a top-level context key, stamped with storedAt
func (m *ContextManager) StoreConversationEntity(ctx context.Context, sessionID, entityType string, data map[string]any) error {
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		entry := make(map[string]any, len(data)+1)
		for k, v := range data {
			entry[k] = v
		}
		entry["storedAt"] = m.now()
		s.Context[entityType] = entry
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store conversation entity: %w", err)
	}
	return nil
}

// GetConversationEntity returns a top-level context value, nil when unset
func (m *ContextManager) GetConversationEntity(ctx context.Context, sessionID, entityType string) (any, error) {
	c, err := m.GetContext(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c[entityType], nil
}

// AddToComparison appends a product to the comparison list, evicting the
// oldest entry once it holds MaxComparisonItems.
func (m *ContextManager) AddToComparison(ctx context.Context, sessionID string, item map[string]any) error {
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		list := append([]any(nil), s.Context.ComparisonList()...)
		if len(list) >= domain.MaxComparisonItems {
			list = list[len(list)-domain.MaxComparisonItems+1:]
		}
		s.Context[domain.CtxComparisonList] = append(list, item)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add to comparison: %w", err)
	}
	return nil
}

// UpdateUserPreferences merges preferences and stamps lastUpdated
func (m *ContextManager) UpdateUserPreferences(ctx context.Context, sessionID string, prefs map[string]any) error {
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		merged := map[string]any{}
		for k, v := range s.Context.Map(domain.CtxUserPreferences) {
			merged[k] = v
		}
		for k, v := range prefs {
			merged[k] = v
		}
		merged["lastUpdated"] = m.now()
		s.Context[domain.CtxUserPreferences] = merged
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}

// RecordLastAction replaces lastAction, stamped with timestamp
func (m *ContextManager) RecordLastAction(ctx context.Context, sessionID string, action map[string]any) error {
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		entry := make(map[string]any, len(action)+1)
		for k, v := range action {
			entry[k] = v
		}
		entry["timestamp"] = m.now()
		s.Context[domain.CtxLastAction] = entry
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// GetNextActions suggests catalog functions for the session's funnel stage.
// Unknown sessions get no suggestions.
func (m *ContextManager) GetNextActions(ctx context.Context, sessionID string) ([]string, error) {
	c, err := m.GetContext(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return NextActions(c), nil
}

// NextActions maps a context to the functions that usually follow its stage
func NextActions(c domain.Context) []string {
	stage := c.ConversationState()
	if stage == "" {
		stage = domain.StateDiscovery
	}

	switch stage {
	case domain.StateDiscovery:
		return []string{"get_product_details", "filter_products_by_price", "get_hot_trending_products"}
	case domain.StateInterest:
		if c[domain.CtxCurrentProduct] != nil {
			return []string{"add_to_cart", "get_similar_products", "compare_products", "get_product_reviews"}
		}
		return []string{"search_products", "browse_categories"}
	case domain.StateDecision:
		if cart := c.Map(domain.CtxCartState); cart != nil && intValue(cart["itemCount"]) > 0 {
			return []string{"create_order_from_cart", "get_best_voucher", "view_cart", "calculate_shipping_fee"}
		}
		return []string{"add_to_cart", "search_products"}
	case domain.StatePurchase:
		return []string{"create_payment_link", "check_order_status", "add_delivery_address"}
	case domain.StateRetention:
		return []string{"get_user_orders", "create_product_review", "recommend_products", "get_new_arrivals"}
	}
	return []string{"search_products", "get_hot_trending_products", "browse_categories"}
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// ClearContext resets the context to its initial state. Messages are kept.
func (m *ContextManager) ClearContext(ctx context.Context, sessionID string) error {
	_, err := m.mutate(ctx, sessionID, func(s *domain.ChatSession) error {
		s.Context = domain.NewContext(m.now())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear context: %w", err)
	}
	return nil
}

// DeleteSession deactivates the session
func (m *ContextManager) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	if err := m.repo.Deactivate(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListUserSessions returns the user's live sessions, most recent first
func (m *ContextManager) ListUserSessions(ctx context.Context, userID string, limit int) ([]domain.ChatSession, error) {
	sessions, err := m.repo.ListActiveByUser(ctx, userID, m.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// CleanupExpiredSessions physically removes expired sessions
func (m *ContextManager) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

// RunCleanup deletes expired sessions every interval until ctx is done
func (m *ContextManager) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.CleanupExpiredSessions(ctx)
			if err != nil {
				log.Error().Err(err).Msg("session cleanup failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("expired chat sessions removed")
			}
		}
	}
}
