package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultSessionTTL is the sliding expiry applied on every session write.
const DefaultSessionTTL = 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

// ChatSession is one conversation between a shopper and the assistant
type ChatSession struct {
	SessionID    string    `json:"sessionId" bson:"sessionId"`
	UserID       string    `json:"userId" bson:"userId"`
	Messages     []Message `json:"messages" bson:"messages"`
	Context      Context   `json:"context" bson:"context"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt" bson:"lastActiveAt"`
	ExpiresAt    time.Time `json:"expiresAt" bson:"expiresAt"`
}

// NewChatSession builds a fresh session with the initial context
func NewChatSession(userID string, now time.Time, ttl time.Duration) *ChatSession {
	return &ChatSession{
		SessionID:    NewSessionID(userID, now),
		UserID:       userID,
		Messages:     []Message{},
		Context:      NewContext(now),
		IsActive:     true,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(ttl),
	}
}

// NewSessionID derives a session id from the owner and creation time
func NewSessionID(userID string, now time.Time) string {
	return fmt.Sprintf("%s_%d", userID, now.UnixMilli())
}

// Expired reports whether the sliding TTL has elapsed
func (s *ChatSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Live reports whether the session can be served to callers
func (s *ChatSession) Live(now time.Time) bool {
	return s.IsActive && !s.Expired(now)
}

// Touch refreshes activity and pushes the expiry forward
func (s *ChatSession) Touch(now time.Time, ttl time.Duration) {
	s.LastActiveAt = now
	s.ExpiresAt = now.Add(ttl)
}

// SessionSummary is the list view of a session
type SessionSummary struct {
	SessionID    string    `json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	MessageCount int       `json:"messageCount"`
	LastMessage  string    `json:"lastMessage,omitempty"`
}

// Summary returns the list view of the session
func (s *ChatSession) Summary() SessionSummary {
	sum := SessionSummary{
		SessionID:    s.SessionID,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		MessageCount: len(s.Messages),
	}
	if n := len(s.Messages); n > 0 {
		sum.LastMessage = s.Messages[n-1].Content
	}
	return sum
}

// SessionRepository defines the interface for session storage.
// Get returns ErrSessionNotFound for unknown ids; expiry filtering is left to callers.
type SessionRepository interface {
	Create(ctx context.Context, session *ChatSession) error
	Get(ctx context.Context, sessionID string) (*ChatSession, error)
	Save(ctx context.Context, session *ChatSession) error
	ListActiveByUser(ctx context.Context, userID string, now time.Time, limit int) ([]ChatSession, error)
	Deactivate(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
