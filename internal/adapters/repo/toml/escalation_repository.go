package toml

import (
	"context"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	escalationsPathKey  = "escalations.path"
	escalationsFileName = "escalations.toml"
	escalationsLabel    = "escalations"
)

type EscalationRepository struct {
	path string
}

var _ ports.EscalationRepository = (*EscalationRepository)(nil)

func NewEscalationRepository(cfg *viper.Viper) (*EscalationRepository, error) {
	path, err := resolvePath(cfg, escalationsPathKey, escalationsFileName)
	if err != nil {
		return nil, err
	}

	return &EscalationRepository{path: path}, nil
}

func (r *EscalationRepository) GetByID(ctx context.Context, id domain.EscalationID) (domain.Escalation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Escalation{}, err
	}

	file, err := r.load(ctx)
	if err != nil {
		return domain.Escalation{}, err
	}

	for _, entry := range file.Escalations {
		if entry.ID == string(id) {
			return fromEscalationSchema(entry), nil
		}
	}

	return domain.Escalation{}, domain.ErrEscalationNotFound
}

// List returns escalations in creation order.
func (r *EscalationRepository) List(ctx context.Context) ([]domain.Escalation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	escalations := make([]domain.Escalation, 0, len(file.Escalations))
	for _, entry := range file.Escalations {
		escalations = append(escalations, fromEscalationSchema(entry))
	}

	return escalations, nil
}

func (r *EscalationRepository) Save(ctx context.Context, escalation domain.Escalation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return withFileLock(ctx, r.path, func() error {
		file, err := r.readSchema()
		if err != nil {
			return err
		}

		encoded := toEscalationSchema(escalation)
		updated := false
		for i := range file.Escalations {
			if file.Escalations[i].ID == encoded.ID {
				file.Escalations[i] = encoded
				updated = true
				break
			}
		}
		if !updated {
			file.Escalations = append(file.Escalations, encoded)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		return writeTOMLFile(r.path, escalationsLabel, file)
	})
}

func (r *EscalationRepository) load(ctx context.Context) (escalationsFileSchema, error) {
	var file escalationsFileSchema
	err := withFileRLock(ctx, r.path, func() error {
		var err error
		file, err = r.readSchema()
		return err
	})
	return file, err
}

func (r *EscalationRepository) readSchema() (escalationsFileSchema, error) {
	var file escalationsFileSchema
	if _, err := readTOMLFile(r.path, escalationsLabel, &file); err != nil {
		return escalationsFileSchema{}, err
	}
	if err := validateVersion(escalationsLabel, file.Version); err != nil {
		return escalationsFileSchema{}, err
	}
	applyVersion(&file.Version)

	return file, nil
}

func toEscalationSchema(e domain.Escalation) escalationSchema {
	return escalationSchema{
		ID:             string(e.ID),
		UserID:         e.UserID,
		ThreadID:       e.ThreadID,
		Query:          e.Query,
		Draft:          e.Draft,
		Category:       string(e.Category),
		Reason:         e.Reason,
		ProposedAction: e.ProposedAction,
		Status:         string(e.Status),
		Feedback:       e.Feedback,
		CreatedAt:      formatTime(e.CreatedAt),
		ResolvedAt:     formatTime(e.ResolvedAt),
	}
}

func fromEscalationSchema(s escalationSchema) domain.Escalation {
	status := domain.EscalationStatus(s.Status)
	if status == "" {
		status = domain.EscalationPending
	}

	return domain.Escalation{
		ID:             domain.EscalationID(s.ID),
		UserID:         s.UserID,
		ThreadID:       s.ThreadID,
		Query:          s.Query,
		Draft:          s.Draft,
		Category:       domain.Category(s.Category),
		Reason:         s.Reason,
		ProposedAction: s.ProposedAction,
		Status:         status,
		Feedback:       s.Feedback,
		CreatedAt:      parseTime(s.CreatedAt),
		ResolvedAt:     parseTime(s.ResolvedAt),
	}
}
