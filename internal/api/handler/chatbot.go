package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/Rrens/shop-assistant/internal/api/middleware"
	"github.com/Rrens/shop-assistant/internal/api/response"
	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Chatbot is the conversational side of the API
type Chatbot interface {
	ProcessMessage(ctx context.Context, userID, message, sessionID, ipAddress string) *domain.ChatResponse
	GetSessionHistory(ctx context.Context, userID, sessionID string) (*domain.SessionHistory, error)
	ClearSession(ctx context.Context, userID, sessionID string) error
	DeleteSession(ctx context.Context, userID, sessionID string) error
	Suggestions(ctx context.Context, userID, sessionID string) []string
	GetUserSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error)
}

// ChatbotHandler handles chatbot endpoints
type ChatbotHandler struct {
	chatbot Chatbot
}

// NewChatbotHandler creates a new chatbot handler
func NewChatbotHandler(chatbot Chatbot) *ChatbotHandler {
	return &ChatbotHandler{chatbot: chatbot}
}

// SendMessage runs one conversational turn. The turn envelope is returned as is,
// so failed turns still answer 200 with success=false and an apology.
func (h *ChatbotHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		response.BadRequest(w, "message must not be empty")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	resp := h.chatbot.ProcessMessage(r.Context(), userID, req.Message, req.SessionID, clientIP(r))
	response.Raw(w, http.StatusOK, resp)
}

// GetSession returns a session's transcript and context
func (h *ChatbotHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.chatbot.GetSessionHistory(r.Context(), userID, sessionID)
	if err != nil {
		h.sessionError(w, err, sessionID)
		return
	}

	response.OK(w, history)
}

// ClearSession resets a session's working context
func (h *ChatbotHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatbot.ClearSession(r.Context(), userID, sessionID); err != nil {
		h.sessionError(w, err, sessionID)
		return
	}

	response.OK(w, map[string]string{
		"sessionId": sessionID,
		"message":   "Session cleared",
	})
}

// EndSession deactivates a session so it no longer shows up or accepts messages
func (h *ChatbotHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatbot.DeleteSession(r.Context(), userID, sessionID); err != nil {
		h.sessionError(w, err, sessionID)
		return
	}

	response.NoContent(w)
}

// GetSuggestions returns quick replies, optionally tailored to ?sessionId=
func (h *ChatbotHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	response.OK(w, h.chatbot.Suggestions(r.Context(), userID, r.URL.Query().Get("sessionId")))
}

// ListSessions returns the caller's recent sessions
func (h *ChatbotHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessions, err := h.chatbot.GetUserSessions(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list sessions")
		response.InternalError(w, "failed to list sessions")
		return
	}

	response.OK(w, sessions)
}

func (h *ChatbotHandler) sessionError(w http.ResponseWriter, err error, sessionID string) {
	if service.IsSessionNotFound(err) {
		response.NotFound(w, "session not found")
		return
	}
	log.Error().Err(err).Str("session_id", sessionID).Msg("Session request failed")
	response.InternalError(w, "session request failed")
}

// clientIP strips the port from RemoteAddr, which RealIP may already have rewritten
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
