package ports

import (
	"context"

	"github.com/bnema/support-agent-cli/internal/domain"
)

// HistoryStore keeps the per-user record of resolved queries.
// Append must be atomic per user: concurrent appends for one user never lose entries.
type HistoryStore interface {
	// Load returns the user's entries oldest first, or an empty slice.
	Load(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
	Append(ctx context.Context, userID string, entry domain.HistoryEntry) error
	Clear(ctx context.Context, userID string) error
}
