package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_CopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	s := domain.NewChatSession("u1", now, time.Hour)
	require.NoError(t, repo.Create(ctx, s))

	s.Context["leak"] = true
	got, err := repo.Get(ctx, s.SessionID)
	require.NoError(t, err)
	assert.NotContains(t, got.Context, "leak")

	got.Messages = append(got.Messages, domain.Message{Role: domain.RoleUser, Content: "hi"})
	again, err := repo.Get(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Empty(t, again.Messages)
}

func TestSessionRepository_GetMissing(t *testing.T) {
	_, err := NewSessionRepository().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_ListActiveByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := range 7 {
		s := domain.NewChatSession("u1", now.Add(time.Duration(i)*time.Minute), 24*time.Hour)
		require.NoError(t, repo.Create(ctx, s))
	}
	expired := domain.NewChatSession("u1", now.Add(-48*time.Hour), 24*time.Hour)
	require.NoError(t, repo.Create(ctx, expired))
	require.NoError(t, repo.Create(ctx, domain.NewChatSession("u2", now, 24*time.Hour)))

	list, err := repo.ListActiveByUser(ctx, "u1", now.Add(10*time.Minute), 5)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, now.Add(6*time.Minute), list[0].LastActiveAt)
	for _, s := range list {
		assert.Equal(t, "u1", s.UserID)
	}
}

func TestSessionRepository_DeactivateAndDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	live := domain.NewChatSession("u1", now, 24*time.Hour)
	old := domain.NewChatSession("u1", now.Add(-25*time.Hour), 24*time.Hour)
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, old))

	require.NoError(t, repo.Deactivate(ctx, live.SessionID))
	got, err := repo.Get(ctx, live.SessionID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.Get(ctx, old.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
