// Package memory provides an in-process session store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
)

// SessionRepository keeps sessions in a map. Values are copied on the way in
// and out, so callers never share state with the store.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
}

// NewSessionRepository creates an empty store
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*domain.ChatSession)}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.SessionID] = copySession(session)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(s), nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.SessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	r.sessions[session.SessionID] = copySession(session)
	return nil
}

func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID string, now time.Time, limit int) ([]domain.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.ChatSession{}
	for _, s := range r.sessions {
		if s.UserID == userID && s.Live(now) {
			out = append(out, *copySession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActiveAt.After(out[j].LastActiveAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.IsActive = false
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func copySession(s *domain.ChatSession) *domain.ChatSession {
	c := *s
	c.Messages = make([]domain.Message, len(s.Messages))
	for i, m := range s.Messages {
		c.Messages[i] = m
		if m.Metadata != nil {
			c.Messages[i].Metadata = map[string]any(domain.Context(m.Metadata).Clone())
		}
	}
	c.Context = s.Context.Clone()
	return &c
}
