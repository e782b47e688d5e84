package toml

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRepo(t *testing.T) *SessionRepository {
	t.Helper()
	config := viper.New()
	config.Set("sessions.path", filepath.Join(t.TempDir(), "sessions.toml"))
	repo, err := NewSessionRepository(config)
	require.NoError(t, err)
	return repo
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newSessionRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	transcript := domain.Transcript{
		UserID:   "user-1",
		ThreadID: "thread-1",
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "You are a support agent.", Timestamp: now},
			{Role: domain.RoleUser, Content: "How do I reset my password?", Timestamp: now.Add(time.Second)},
			{Role: domain.RoleAssistant, Content: "To reset your password:", Timestamp: now.Add(2 * time.Second)},
		},
		UpdatedAt: now.Add(2 * time.Second),
	}
	require.NoError(t, repo.Save(ctx, transcript))

	got, err := repo.Get(ctx, "user-1", "thread-1")
	require.NoError(t, err)
	assert.Equal(t, transcript, got)

	transcript.Messages = transcript.Messages[:1]
	require.NoError(t, repo.Save(ctx, transcript))
	got, err = repo.Get(ctx, "user-1", "thread-1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestSessionRepositoryKeepsReviewDecision(t *testing.T) {
	t.Parallel()

	repo := newSessionRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)
	rejected := false

	transcript := domain.Transcript{
		UserID:         "user-1",
		ThreadID:       "thread-1",
		Messages:       []domain.Message{{Role: domain.RoleAssistant, Content: "Your issue has been reviewed.", Timestamp: now}},
		UpdatedAt:      now,
		ReviewDecision: &rejected,
	}
	require.NoError(t, repo.Save(ctx, transcript))

	got, err := repo.Get(ctx, "user-1", "thread-1")
	require.NoError(t, err)
	require.NotNil(t, got.ReviewDecision)
	assert.False(t, *got.ReviewDecision)

	transcript.ReviewDecision = nil
	require.NoError(t, repo.Save(ctx, transcript))

	got, err = repo.Get(ctx, "user-1", "thread-1")
	require.NoError(t, err)
	assert.Nil(t, got.ReviewDecision)
}

func TestSessionRepositoryMissingThread(t *testing.T) {
	t.Parallel()

	_, err := newSessionRepo(t).Get(context.Background(), "user-1", "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepositorySaveRejectsEmptyIdentifiers(t *testing.T) {
	t.Parallel()

	err := newSessionRepo(t).Save(context.Background(), domain.Transcript{UserID: "user-1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSessionRepositoryDeleteRemovesOnlyThatUser(t *testing.T) {
	t.Parallel()

	repo := newSessionRepo(t)
	ctx := context.Background()
	for _, tr := range []domain.Transcript{
		{UserID: "user-1", ThreadID: "a"},
		{UserID: "user-1", ThreadID: "b"},
		{UserID: "user-2", ThreadID: "a"},
	} {
		require.NoError(t, repo.Save(ctx, tr))
	}

	removed, err := repo.Delete(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = repo.Get(ctx, "user-1", "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = repo.Get(ctx, "user-2", "a")
	assert.NoError(t, err)

	removed, err = repo.Delete(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, removed)
}
