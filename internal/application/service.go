// Package application coordinates support turns: it loads the carried
// transcript, runs the pipeline and routes escalations to human review.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/pipeline"
	"github.com/bnema/support-agent-cli/internal/ports"
	"go.uber.org/zap"
)

const ApologyText = "I apologize, but I encountered an issue processing your request."

type Runner interface {
	Run(ctx context.Context, state *domain.SessionState) (pipeline.Result, error)
}

type Service struct {
	engine      Runner
	history     ports.HistoryStore
	sessions    ports.SessionRepository
	escalations *EscalationService
	clock       ports.Clock
	logger      *zap.Logger
	locks       *keyedMutex
}

func NewService(engine Runner, history ports.HistoryStore, sessions ports.SessionRepository, escalations *EscalationService, clock ports.Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		engine:      engine,
		history:     history,
		sessions:    sessions,
		escalations: escalations,
		clock:       clock,
		logger:      logger,
		locks:       newKeyedMutex(),
	}
}

func (s *Service) StartSession(ctx context.Context, userID, threadID string) (SessionInfo, error) {
	if err := domain.ValidateIdentifiers(userID, threadID); err != nil {
		return SessionInfo{}, err
	}

	entries, err := s.history.Load(ctx, userID)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("load history: %w: %w", domain.ErrStoreUnavailable, err)
	}

	info := SessionInfo{
		SessionID:    domain.SessionID(userID, threadID),
		UserID:       userID,
		ThreadID:     threadID,
		HistoryCount: len(entries),
	}

	transcript, err := s.loadTranscript(ctx, userID, threadID)
	if err != nil {
		return SessionInfo{}, err
	}
	info.MessageCount = len(transcript.Messages)
	info.Resumed = len(transcript.Messages) > 0

	return info, nil
}

// ProcessTurn runs one query through the pipeline. Turns of the same thread
// are serialized. Any failure yields the apology text together with the error.
func (s *Service) ProcessTurn(ctx context.Context, cmd ProcessTurnCommand) (TurnResult, error) {
	if err := domain.ValidateIdentifiers(cmd.UserID, cmd.ThreadID); err != nil {
		return TurnResult{}, err
	}

	sessionID := domain.SessionID(cmd.UserID, cmd.ThreadID)
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	failed := TurnResult{SessionID: sessionID, ResponseText: ApologyText}
	logger := s.logger.With(zap.String("user_id", cmd.UserID), zap.String("thread_id", cmd.ThreadID))

	transcript, err := s.loadTranscript(ctx, cmd.UserID, cmd.ThreadID)
	if err != nil {
		logger.Error("load transcript failed", zap.Error(err))
		return failed, err
	}

	now := s.clock.Now()
	state, err := domain.NewSessionState(cmd.UserID, cmd.ThreadID, now)
	if err != nil {
		return failed, err
	}
	state.Messages = append(state.Messages, transcript.Messages...)
	state.ReviewDecision = transcript.ReviewDecision
	state.BeginTurn()

	query := strings.TrimSpace(cmd.Query)
	if query != "" {
		state.AppendMessage(domain.Message{Role: domain.RoleUser, Content: query, Timestamp: now})
	}

	result, err := s.engine.Run(ctx, state)
	if err != nil {
		logger.Error("turn failed", zap.Error(err))
		return failed, err
	}

	turn := TurnResult{
		SessionID:      sessionID,
		ResponseText:   ApologyText,
		RequiresReview: state.RequiresReview,
		ReviewDecision: state.ReviewDecision,
		Metadata:       state.Metadata,
	}
	for _, stage := range result.Path {
		turn.Path = append(turn.Path, string(stage))
	}
	if result.Response != nil {
		turn.ResponseText = result.Response.Text
		turn.Category = result.Response.Category
		turn.Confidence = result.Response.Confidence
		turn.Source = result.Response.Source
	}

	if result.Escalated() {
		escalation, err := s.escalations.Open(ctx, OpenEscalationCommand{
			UserID:   cmd.UserID,
			ThreadID: cmd.ThreadID,
			Query:    query,
			Draft:    turn.ResponseText,
			Category: turn.Category,
			Reason:   result.Reason,
		})
		if err != nil {
			logger.Error("open escalation failed", zap.Error(err))
			return failed, fmt.Errorf("open escalation: %w", err)
		}
		turn.EscalationID = escalation.ID
		return turn, nil
	}

	if err := s.sessions.Save(ctx, domain.Transcript{
		UserID:    cmd.UserID,
		ThreadID:  cmd.ThreadID,
		Messages:  state.Messages,
		UpdatedAt: now,
	}); err != nil {
		logger.Error("save transcript failed", zap.Error(err))
		return failed, fmt.Errorf("save transcript: %w: %w", domain.ErrStoreUnavailable, err)
	}

	return turn, nil
}

// ResolveEscalation holds the thread lock so the resolution written to the
// transcript cannot be overwritten by a turn running at the same time.
func (s *Service) ResolveEscalation(ctx context.Context, cmd ResolveEscalationCommand) (Resolution, error) {
	if err := domain.ValidateIdentifiers(cmd.UserID, cmd.ThreadID); err != nil {
		return Resolution{}, err
	}

	unlock := s.locks.Lock(domain.SessionID(cmd.UserID, cmd.ThreadID))
	defer unlock()

	return s.escalations.Resolve(ctx, cmd)
}

func (s *Service) ResolveEscalationByID(ctx context.Context, cmd ResolveEscalationByIDCommand) (Resolution, error) {
	escalation, err := s.escalations.Get(ctx, cmd.ID)
	if err != nil {
		return Resolution{}, err
	}

	unlock := s.locks.Lock(domain.SessionID(escalation.UserID, escalation.ThreadID))
	defer unlock()

	return s.escalations.ResolveByID(ctx, cmd)
}

func (s *Service) ListEscalations(ctx context.Context, filter EscalationFilter) ([]domain.Escalation, error) {
	return s.escalations.List(ctx, filter)
}

func (s *Service) ExpireEscalations(ctx context.Context) (int, error) {
	return s.escalations.Expire(ctx)
}

// GetHistory returns the newest limit entries, oldest first. A non-positive limit returns everything.
func (s *Service) GetHistory(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	entries, err := s.history.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	return entries, nil
}

// ClearHistory removes the user's history and every carried thread transcript.
func (s *Service) ClearHistory(ctx context.Context, userID string) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return err
	}

	var errs []error
	if err := s.history.Clear(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("clear history: %w: %w", domain.ErrStoreUnavailable, err))
	}
	if _, err := s.sessions.Delete(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("delete transcripts: %w: %w", domain.ErrStoreUnavailable, err))
	}

	return errors.Join(errs...)
}

// SearchHistory matches keyword case-insensitively against queries and resolutions.
func (s *Service) SearchHistory(ctx context.Context, userID, keyword string) ([]domain.HistoryEntry, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(keyword) == "" {
		return nil, &domain.ValidationError{Field: "keyword", Reason: "keyword cannot be empty"}
	}

	entries, err := s.history.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w: %w", domain.ErrStoreUnavailable, err)
	}

	needle := strings.ToLower(keyword)
	matches := []domain.HistoryEntry{}
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Query), needle) || strings.Contains(strings.ToLower(entry.Resolution), needle) {
			matches = append(matches, entry)
		}
	}

	return matches, nil
}

func (s *Service) loadTranscript(ctx context.Context, userID, threadID string) (domain.Transcript, error) {
	transcript, err := s.sessions.Get(ctx, userID, threadID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Transcript{UserID: userID, ThreadID: threadID}, nil
		}
		return domain.Transcript{}, fmt.Errorf("load transcript: %w: %w", domain.ErrStoreUnavailable, err)
	}

	return transcript, nil
}
