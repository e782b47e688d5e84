package toml

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscalationRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "escalations.toml")
	config := viper.New()
	config.Set("escalations.path", path)
	repo, err := NewEscalationRepository(config)
	require.NoError(t, err)

	ctx := context.Background()
	created := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)
	pending := domain.Escalation{
		ID:             "esc-1",
		UserID:         "user-1",
		ThreadID:       "thread-1",
		Query:          "I want a refund",
		Draft:          "I understand this is an important matter",
		Category:       domain.CategoryEscalation,
		Reason:         `escalation trigger "refund"`,
		ProposedAction: domain.ProposedAction("I want a refund"),
		Status:         domain.EscalationPending,
		CreatedAt:      created,
	}
	second := pending
	second.ID = "esc-2"

	require.NoError(t, repo.Save(ctx, pending))
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.GetByID(ctx, "esc-1")
	require.NoError(t, err)
	assert.Equal(t, pending, got)

	resolved := pending
	resolved.Status = domain.EscalationApproved
	resolved.Feedback = "Refund issued"
	resolved.ResolvedAt = created.Add(time.Hour)
	require.NoError(t, repo.Save(ctx, resolved))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Escalation{resolved, second}, all)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrEscalationNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "version = 1"))
}
