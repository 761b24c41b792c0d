package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository implements domain.SessionRepository on the chat_sessions collection
type SessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{coll: db.Database().Collection(CollSessions)}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&s)
	if err != nil {
		return nil, notFound(err, domain.ErrSessionNotFound)
	}
	normalizeSession(&s)
	return &s, nil
}

// Save replaces the stored document; the session must already exist
func (r *SessionRepository) Save(ctx context.Context, session *domain.ChatSession) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"sessionId": session.SessionID}, session)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID string, now time.Time, limit int) ([]domain.ChatSession, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "lastActiveAt", Value: -1}}).
		SetProjection(bson.M{"context": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	filter := bson.M{
		"userId":    userID,
		"isActive":  true,
		"expiresAt": bson.M{"$gt": now},
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []domain.ChatSession{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	for i := range sessions {
		normalizeSession(&sessions[i])
	}
	return sessions, nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$set": bson.M{"isActive": false}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes sessions the TTL monitor has not reaped yet
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.DeletedCount, nil
}

func normalizeSession(s *domain.ChatSession) {
	if s.Messages == nil {
		s.Messages = []domain.Message{}
	}
	if s.Context == nil {
		s.Context = domain.Context{}
	} else {
		s.Context = domain.Context(plainMap(s.Context))
	}
	for i := range s.Messages {
		if s.Messages[i].Metadata != nil {
			s.Messages[i].Metadata = plainMap(s.Messages[i].Metadata)
		}
	}
}
