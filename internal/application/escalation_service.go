package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultEscalationTTL = 48 * time.Hour

const (
	approvedFallback = "Our team will contact you with the resolution."
	rejectedFallback = "Our team will follow up with alternative solutions."
)

// EscalationService parks escalated turns until a human approves or rejects them.
type EscalationService struct {
	repo     ports.EscalationRepository
	history  ports.HistoryStore
	sessions ports.SessionRepository
	clock    ports.Clock
	ttl      time.Duration
	logger   *zap.Logger
	newID    func() domain.EscalationID

	// mu serializes read-modify-write cycles on the repository.
	mu sync.Mutex
}

func NewEscalationService(repo ports.EscalationRepository, history ports.HistoryStore, sessions ports.SessionRepository, clock ports.Clock, ttl time.Duration, logger *zap.Logger) *EscalationService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EscalationService{
		repo:     repo,
		history:  history,
		sessions: sessions,
		clock:    clock,
		ttl:      ttl,
		logger:   logger.With(zap.String("component", "escalations")),
		newID:    func() domain.EscalationID { return domain.EscalationID(uuid.NewString()) },
	}
}

func (s *EscalationService) Open(ctx context.Context, cmd OpenEscalationCommand) (domain.Escalation, error) {
	if err := domain.ValidateIdentifiers(cmd.UserID, cmd.ThreadID); err != nil {
		return domain.Escalation{}, err
	}

	escalation := domain.Escalation{
		ID:             s.newID(),
		UserID:         cmd.UserID,
		ThreadID:       cmd.ThreadID,
		Query:          cmd.Query,
		Draft:          cmd.Draft,
		Category:       cmd.Category,
		Reason:         cmd.Reason,
		ProposedAction: domain.ProposedAction(cmd.Query),
		Status:         domain.EscalationPending,
		CreatedAt:      s.clock.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, escalation); err != nil {
		return domain.Escalation{}, fmt.Errorf("save escalation: %w: %w", domain.ErrStoreUnavailable, err)
	}

	s.logger.Info("escalation opened",
		zap.String("escalation_id", string(escalation.ID)),
		zap.String("user_id", escalation.UserID),
		zap.String("thread_id", escalation.ThreadID),
		zap.String("reason", escalation.Reason),
	)

	return escalation, nil
}

// Resolve settles the newest pending escalation of the thread.
func (s *EscalationService) Resolve(ctx context.Context, cmd ResolveEscalationCommand) (Resolution, error) {
	if err := domain.ValidateIdentifiers(cmd.UserID, cmd.ThreadID); err != nil {
		return Resolution{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.List(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("list escalations: %w", err)
	}

	var latest *domain.Escalation
	for i := range all {
		e := all[i]
		if e.UserID != cmd.UserID || e.ThreadID != cmd.ThreadID || !e.Pending() {
			continue
		}
		if latest == nil || !e.CreatedAt.Before(latest.CreatedAt) {
			latest = &e
		}
	}
	if latest == nil {
		return Resolution{}, fmt.Errorf("no pending escalation for session %s: %w", domain.SessionID(cmd.UserID, cmd.ThreadID), domain.ErrEscalationNotFound)
	}

	return s.resolve(ctx, *latest, cmd.Approved, cmd.Feedback)
}

func (s *EscalationService) Get(ctx context.Context, id domain.EscalationID) (domain.Escalation, error) {
	escalation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Escalation{}, fmt.Errorf("get escalation %s: %w", id, err)
	}
	return escalation, nil
}

func (s *EscalationService) ResolveByID(ctx context.Context, cmd ResolveEscalationByIDCommand) (Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	escalation, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return Resolution{}, fmt.Errorf("get escalation %s: %w", cmd.ID, err)
	}

	return s.resolve(ctx, escalation, cmd.Approved, cmd.Feedback)
}

func (s *EscalationService) resolve(ctx context.Context, escalation domain.Escalation, approved bool, feedback string) (Resolution, error) {
	if !escalation.Pending() {
		return Resolution{}, fmt.Errorf("escalation %s is already %s: %w", escalation.ID, escalation.Status, domain.ErrEscalationNotFound)
	}

	now := s.clock.Now()
	if escalation.Expired(now, s.ttl) {
		if err := s.markExpired(ctx, escalation, now); err != nil {
			return Resolution{}, err
		}
		return Resolution{}, fmt.Errorf("escalation %s expired: %w", escalation.ID, domain.ErrEscalationNotFound)
	}

	original := escalation
	message := ResolutionMessage(approved, feedback)
	escalation.Status = domain.EscalationRejected
	if approved {
		escalation.Status = domain.EscalationApproved
	}
	escalation.Feedback = feedback
	escalation.ResolvedAt = now

	if err := s.repo.Save(ctx, escalation); err != nil {
		return Resolution{}, fmt.Errorf("save escalation: %w: %w", domain.ErrStoreUnavailable, err)
	}

	previous, err := s.notifyThread(ctx, escalation, approved, message)
	if err != nil {
		return Resolution{}, s.undo(ctx, fmt.Errorf("update thread: %w", err), original, nil)
	}

	if approved && s.history != nil {
		if err := s.recordApproval(ctx, escalation, message); err != nil {
			return Resolution{}, s.undo(ctx, fmt.Errorf("record approval: %w", err), original, previous)
		}
	}

	s.logger.Info("escalation resolved",
		zap.String("escalation_id", string(escalation.ID)),
		zap.String("status", string(escalation.Status)),
	)

	return Resolution{
		SessionID:  domain.SessionID(escalation.UserID, escalation.ThreadID),
		Status:     escalation.Status,
		Message:    message,
		Escalation: escalation,
	}, nil
}

// notifyThread adds the parked query and the resolution to the thread transcript
// and records the decision for its next turn. It returns the transcript it replaced.
func (s *EscalationService) notifyThread(ctx context.Context, escalation domain.Escalation, approved bool, message string) (*domain.Transcript, error) {
	if s.sessions == nil {
		return nil, nil
	}

	previous, err := s.sessions.Get(ctx, escalation.UserID, escalation.ThreadID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("load transcript: %w: %w", domain.ErrStoreUnavailable, err)
		}
		previous = domain.Transcript{UserID: escalation.UserID, ThreadID: escalation.ThreadID}
	}

	updated := previous
	updated.Messages = slices.Clone(previous.Messages)
	if escalation.Query != "" {
		updated.Messages = append(updated.Messages, domain.Message{Role: domain.RoleUser, Content: escalation.Query, Timestamp: escalation.CreatedAt})
	}
	updated.Messages = append(updated.Messages, domain.Message{Role: domain.RoleAssistant, Content: message, Timestamp: escalation.ResolvedAt})
	updated.ReviewDecision = &approved
	updated.UpdatedAt = escalation.ResolvedAt

	if err := s.sessions.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save transcript: %w: %w", domain.ErrStoreUnavailable, err)
	}

	return &previous, nil
}

// undo puts back the escalation and, when given, the transcript after a later step failed.
func (s *EscalationService) undo(ctx context.Context, cause error, escalation domain.Escalation, transcript *domain.Transcript) error {
	errs := []error{cause}
	if transcript != nil {
		if err := s.sessions.Save(ctx, *transcript); err != nil {
			errs = append(errs, fmt.Errorf("rollback transcript: %w", err))
		}
	}
	if err := s.repo.Save(ctx, escalation); err != nil {
		errs = append(errs, fmt.Errorf("rollback escalation: %w", err))
	}

	return errors.Join(errs...)
}

func (s *EscalationService) recordApproval(ctx context.Context, escalation domain.Escalation, message string) error {
	entry, err := domain.NewHistoryEntry(escalation.Query, message, domain.FormatTimestamp(escalation.ResolvedAt), map[string]string{
		"category":      string(domain.CategoryEscalation),
		"thread_id":     escalation.ThreadID,
		"escalation_id": string(escalation.ID),
		"status":        string(escalation.Status),
	})
	if err != nil {
		return err
	}

	if err := s.history.Append(ctx, escalation.UserID, entry); err != nil {
		return fmt.Errorf("append history: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *EscalationService) markExpired(ctx context.Context, escalation domain.Escalation, now time.Time) error {
	escalation.Status = domain.EscalationExpired
	escalation.ResolvedAt = now
	if err := s.repo.Save(ctx, escalation); err != nil {
		return fmt.Errorf("expire escalation %s: %w: %w", escalation.ID, domain.ErrStoreUnavailable, err)
	}

	s.logger.Info("escalation expired", zap.String("escalation_id", string(escalation.ID)))
	return nil
}

func (s *EscalationService) List(ctx context.Context, filter EscalationFilter) ([]domain.Escalation, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list escalations: %w", err)
	}

	out := make([]domain.Escalation, 0, len(all))
	for _, e := range all {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Expire marks every pending escalation older than the TTL as expired and reports how many changed.
func (s *EscalationService) Expire(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list escalations: %w", err)
	}

	now := s.clock.Now()
	expired := 0
	var errs []error
	for _, e := range all {
		if !e.Expired(now, s.ttl) {
			continue
		}
		if err := s.markExpired(ctx, e, now); err != nil {
			errs = append(errs, err)
			continue
		}
		expired++
	}

	return expired, errors.Join(errs...)
}

func ResolutionMessage(approved bool, feedback string) string {
	if approved {
		if feedback == "" {
			feedback = approvedFallback
		}
		return "Your issue has been reviewed and approved. " + feedback
	}

	if feedback == "" {
		feedback = rejectedFallback
	}
	return "Your issue has been reviewed. " + feedback
}
