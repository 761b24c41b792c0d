package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/intent"
	"github.com/Rrens/shop-assistant/internal/observability"
	"github.com/rs/zerolog/log"
)

const (
	apologyReply    = "Sorry, I'm having a technical problem. Could you try again?"
	clarifyingReply = "Sorry, I don't understand. Could you say that more clearly?"
)

// ChatbotOptions tunes the conversation loop
type ChatbotOptions struct {
	HistoryLimit    int
	SessionListSize int
	TurnTimeout     time.Duration
}

// ChatbotService runs one conversational turn end to end
type ChatbotService struct {
	contexts   *ContextManager
	classifier *IntentClassifier
	metrics    *observability.Metrics
	opts       ChatbotOptions
}

// NewChatbotService creates a new chatbot service
func NewChatbotService(contexts *ContextManager, classifier *IntentClassifier, metrics *observability.Metrics, opts ChatbotOptions) *ChatbotService {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	if opts.SessionListSize <= 0 {
		opts.SessionListSize = 5
	}
	return &ChatbotService{
		contexts:   contexts,
		classifier: classifier,
		metrics:    metrics,
		opts:       opts,
	}
}

// ProcessMessage handles a shopper message and returns the assistant's reply.
// Failures never escape: they come back as an unsuccessful envelope with an apology.
func (s *ChatbotService) ProcessMessage(ctx context.Context, userID, message, sessionID, ipAddress string) *domain.ChatResponse {
	start := time.Now()
	if s.opts.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TurnTimeout)
		defer cancel()
	}

	resp, err := s.processMessage(ctx, userID, message, sessionID, ipAddress)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("session_id", sessionID).
			Dur("duration", time.Since(start)).
			Msg("chatbot turn failed")
		s.metrics.RecordTurn("error", false, time.Since(start))
		return &domain.ChatResponse{
			Success: false,
			Error:   err.Error(),
			Message: apologyReply,
		}
	}

	resp.Metadata.DurationMs = time.Since(start).Milliseconds()
	s.metrics.RecordTurn(resp.Metadata.Intent, true, time.Since(start))
	log.Info().
		Str("user_id", userID).
		Str("session_id", resp.SessionID).
		Str("intent", resp.Metadata.Intent).
		Int64("duration_ms", resp.Metadata.DurationMs).
		Msg("chatbot turn completed")
	return resp
}

func (s *ChatbotService) processMessage(ctx context.Context, userID, message, sessionID, ipAddress string) (*domain.ChatResponse, error) {
	session, err := s.contexts.GetOrCreateSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	sid := session.SessionID

	// history is loaded before the new message so the model sees it only once
	history, err := s.contexts.GetConversationHistory(ctx, sid, s.opts.HistoryLimit)
	if err != nil {
		return nil, err
	}

	if err := s.contexts.AddMessage(ctx, sid, domain.RoleUser, message, nil); err != nil {
		return nil, err
	}

	classification, err := s.classifier.Classify(ctx, message, history, userID)
	if err != nil {
		return nil, err
	}

	var (
		reply  string
		data   any
		result *intent.Result
	)
	metadata := &domain.ChatMetadata{Intent: domain.GeneralConversation, TokensUsed: classification.TokensUsed}

	if classification.Type == ClassificationFunctionCall {
		r := s.classifier.ExecuteFunction(ctx, classification.FunctionName, classification.Arguments, intent.Caller{
			UserID:    userID,
			SessionID: sid,
			IPAddress: ipAddress,
		})
		result = &r

		s.updateContextFromFunction(ctx, sid, classification.FunctionName, r)

		reply = s.classifier.GenerateResponse(ctx, message, r, history)
		data = r.Data
		metadata.Intent = classification.FunctionName
		metadata.FunctionCalled = true
	} else {
		reply = classification.Content
	}

	if strings.TrimSpace(reply) == "" {
		reply = clarifyingReply
	}

	assistantMeta := map[string]any{
		domain.MetaFunctionCalled: classification.FunctionName,
		domain.MetaFunctionResult: nil,
	}
	if result != nil {
		assistantMeta[domain.MetaFunctionResult] = resultMap(*result)
	}
	if err := s.contexts.AddMessage(ctx, sid, domain.RoleAssistant, reply, assistantMeta); err != nil {
		return nil, err
	}

	return &domain.ChatResponse{
		Success:   true,
		SessionID: sid,
		Message:   reply,
		Data:      data,
		Metadata:  metadata,
	}, nil
}

// resultMap stores a result in message metadata in its wire shape
func resultMap(r intent.Result) map[string]any {
	m := map[string]any{
		"success": r.Success,
		"message": r.Message,
	}
	if r.Data != nil {
		m["data"] = r.Data
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	return m
}

// updateContextFromFunction records what a successful call means for the
// conversation. Failures are logged; the turn goes on.
func (s *ChatbotService) updateContextFromFunction(ctx context.Context, sessionID, functionName string, result intent.Result) {
	if !result.Success {
		return
	}
	update := contextUpdateFor(functionName, result)
	if len(update) == 0 {
		return
	}
	if _, err := s.contexts.UpdateContext(ctx, sessionID, update); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", sessionID).
			Str("function", functionName).
			Msg("failed to update context from function")
	}
}

func contextUpdateFor(functionName string, result intent.Result) domain.Context {
	data, _ := domain.AsMap(result.Data)

	switch functionName {
	case intent.FnSearchProducts:
		return domain.Context{
			domain.CtxCurrentIntent:     IntentProductSearch,
			domain.CtxConversationState: domain.StateAwaitingProductSelection,
		}
	case intent.FnGetProductDetails:
		update := domain.Context{domain.CtxCurrentIntent: IntentProductDetails}
		if product, ok := domain.AsMap(data["product"]); ok {
			update[domain.CtxLastMentionedProduct] = product["id"]
			update[domain.CtxCurrentProduct] = product
		}
		return update
	case intent.FnAddToCart:
		return domain.Context{
			domain.CtxCurrentIntent:     IntentCartManagement,
			domain.CtxConversationState: domain.StateIdle,
		}
	case intent.FnCheckOrderStatus:
		update := domain.Context{domain.CtxCurrentIntent: IntentOrderTracking}
		if id, ok := data["orderId"]; ok {
			update[domain.CtxLastMentionedOrder] = id
		}
		return update
	case intent.FnViewCart:
		return domain.Context{
			domain.CtxCartContext:   data["cart"],
			domain.CtxCurrentIntent: IntentCartView,
		}
	}
	return nil
}

// GetSessionHistory returns the transcript of one of the user's sessions
func (s *ChatbotService) GetSessionHistory(ctx context.Context, userID, sessionID string) (*domain.SessionHistory, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return &domain.SessionHistory{
		SessionID: session.SessionID,
		Messages:  session.Messages,
		Context:   session.Context,
	}, nil
}

// ClearSession resets the working context of a session; its messages stay
func (s *ChatbotService) ClearSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.contexts.ClearContext(ctx, sessionID)
}

// DeleteSession ends a session
func (s *ChatbotService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.contexts.DeleteSession(ctx, sessionID)
}

// Suggestions returns quick replies for a session, or the default list when
// no session is given or it cannot be found.
func (s *ChatbotService) Suggestions(ctx context.Context, userID, sessionID string) []string {
	if sessionID == "" {
		return GetSuggestions(nil)
	}
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return GetSuggestions(nil)
	}
	return GetSuggestions(session.Context)
}

// GetUserSessions lists the user's most recently active sessions
func (s *ChatbotService) GetUserSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error) {
	sessions, err := s.contexts.ListUserSessions(ctx, userID, s.opts.SessionListSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	out := make([]domain.SessionSummary, len(sessions))
	for i := range sessions {
		out[i] = sessions[i].Summary()
	}
	return out, nil
}

func (s *ChatbotService) ownedSession(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error) {
	session, err := s.contexts.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// IsSessionNotFound reports whether err means the session is gone or not the caller's
func IsSessionNotFound(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound)
}
