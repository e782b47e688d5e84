package ports

import (
	"context"

	"github.com/bnema/support-agent-cli/internal/domain"
)

type EscalationRepository interface {
	GetByID(ctx context.Context, id domain.EscalationID) (domain.Escalation, error)
	List(ctx context.Context) ([]domain.Escalation, error)
	Save(ctx context.Context, escalation domain.Escalation) error
}
