package ports

import (
	"context"

	"github.com/bnema/support-agent-cli/internal/domain"
)

// SessionRepository carries each thread's bounded message log between turns.
type SessionRepository interface {
	// Get returns domain.ErrSessionNotFound for an unknown thread.
	Get(ctx context.Context, userID, threadID string) (domain.Transcript, error)
	Save(ctx context.Context, transcript domain.Transcript) error
	Delete(ctx context.Context, userID string) (int, error)
}
