// Package pipeline runs one support turn through the fixed stage sequence.
package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/ports"
	"go.uber.org/zap"
)

const defaultHITLReason = "Complex query requiring human review"

type Classifier interface {
	Classify(query string) domain.Classification
}

type Responder interface {
	Generate(query string, classification domain.Classification, history []domain.HistoryEntry) domain.Response
}

type ContextManager interface {
	Apply(state *domain.SessionState)
}

type Engine struct {
	history    ports.HistoryStore
	classifier Classifier
	responder  Responder
	contextMgr ContextManager
	clock      ports.Clock
	logger     *zap.Logger
}

func NewEngine(history ports.HistoryStore, classifier Classifier, responder Responder, contextManager ContextManager, clock ports.Clock, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		history:    history,
		classifier: classifier,
		responder:  responder,
		contextMgr: contextManager,
		clock:      clock,
		logger:     logger,
	}
}

// Result describes one finished run. Response is nil when the turn had no query.
type Result struct {
	State    *domain.SessionState
	Terminal Stage
	Path     []Stage
	Response *domain.Response
	// Reason is why the turn was escalated; empty otherwise.
	Reason string
}

func (r Result) Escalated() bool {
	return r.Terminal == StageEscalated
}

// run carries values produced by one stage and consumed by a later one.
type run struct {
	state          *domain.SessionState
	classification domain.Classification
	response       *domain.Response
}

// Run executes the stages until DONE or ESCALATED. On a store failure it
// returns the partial result together with an error wrapping domain.ErrStoreUnavailable.
func (e *Engine) Run(ctx context.Context, state *domain.SessionState) (Result, error) {
	if state == nil {
		return Result{}, &domain.ValidationError{Field: "session", Reason: "session state is nil"}
	}
	for i, msg := range state.Messages {
		if err := msg.Validate(); err != nil {
			return Result{}, fmt.Errorf("message at index %d: %w", i, err)
		}
	}
	if state.Metadata == nil {
		state.Metadata = map[string]any{}
	}

	r := &run{state: state}
	logger := e.logger.With(zap.String("user_id", state.UserID), zap.String("thread_id", state.ThreadID))
	result := Result{State: state}

	stage := StageFetchHistory
	for {
		result.Path = append(result.Path, stage)
		if stage.Terminal() {
			break
		}

		logger.Debug("pipeline stage", zap.String("stage", string(stage)))
		nextStage, err := e.step(ctx, stage, r)
		if err != nil {
			logger.Error("pipeline stage failed", zap.String("stage", string(stage)), zap.Error(err))
			result.Response = r.response
			return result, fmt.Errorf("%s: %w", stage, err)
		}
		stage = nextStage
	}

	result.Terminal = stage
	result.Response = r.response
	if stage == StageEscalated {
		result.Reason = r.classification.Reason
		if result.Reason == "" {
			result.Reason = defaultHITLReason
		}
		logger.Info("turn escalated for human review", zap.String("reason", result.Reason))
	}

	return result, nil
}

func (e *Engine) step(ctx context.Context, stage Stage, r *run) (Stage, error) {
	switch stage {
	case StageFetchHistory:
		return next[stage], e.fetchHistory(ctx, r.state)
	case StageProcessQuery:
		processQuery(r.state)
		return next[stage], nil
	case StageGenerateResponse:
		e.generateResponse(r)
		return next[stage], nil
	case StageCheckHITL:
		return checkHITL(r), nil
	case StageSaveInteraction:
		return next[stage], e.saveInteraction(ctx, r)
	case StageTrimContext:
		if e.contextMgr != nil {
			e.contextMgr.Apply(r.state)
		}
		return next[stage], nil
	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}
}

func (e *Engine) fetchHistory(ctx context.Context, state *domain.SessionState) error {
	if state.UserID == "" {
		return nil
	}

	entries, err := e.history.Load(ctx, state.UserID)
	if err != nil {
		return fmt.Errorf("load history: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	state.History = entries
	state.SetMeta(domain.MetaHistoryLoaded, true)
	state.SetMeta(domain.MetaHistoryCount, len(entries))
	return nil
}

// processQuery records the newest user message of this turn as the current query.
func processQuery(state *domain.SessionState) {
	turn := state.TurnMessages()
	if len(turn) == 0 {
		return
	}

	latest := turn[len(turn)-1]
	if latest.Role == domain.RoleUser {
		state.SetMeta(domain.MetaCurrentQuery, latest.Content)
	}
}

func (e *Engine) generateResponse(r *run) {
	query, _ := r.state.MetaString(domain.MetaCurrentQuery)
	if query == "" {
		return
	}

	r.classification = e.classifier.Classify(query)
	resp := e.responder.Generate(query, r.classification, r.state.History)
	r.response = &resp

	r.state.AppendMessage(domain.Message{
		Role:      domain.RoleAssistant,
		Content:   resp.Text,
		Timestamp: e.clock.Now(),
	})
	r.state.RequiresReview = resp.RequiresReview
	r.state.SetMeta(domain.MetaResponseCategory, string(resp.Category))
	r.state.SetMeta(domain.MetaResponseConfidence, resp.Confidence)
	r.state.SetMeta(domain.MetaResponseSource, string(resp.Source))
}

func checkHITL(r *run) Stage {
	if !r.state.RequiresReview {
		return StageSaveInteraction
	}

	reason := r.classification.Reason
	if reason == "" {
		reason = defaultHITLReason
	}
	r.state.SetMeta(domain.MetaHITLRequested, true)
	r.state.SetMeta(domain.MetaHITLReason, reason)
	return StageEscalated
}

func (e *Engine) saveInteraction(ctx context.Context, r *run) error {
	query, _ := r.state.MetaString(domain.MetaCurrentQuery)
	if r.state.UserID == "" || query == "" || r.response == nil {
		return nil
	}

	metadata := map[string]string{
		"category":   string(r.response.Category),
		"confidence": strconv.FormatFloat(r.response.Confidence, 'f', -1, 64),
		"thread_id":  r.state.ThreadID,
	}
	entry, err := domain.NewHistoryEntry(query, r.response.Text, domain.FormatTimestamp(e.clock.Now()), metadata)
	if err != nil {
		return fmt.Errorf("build history entry: %w", err)
	}

	if err := e.history.Append(ctx, r.state.UserID, entry); err != nil {
		return fmt.Errorf("append history: %w: %w", domain.ErrStoreUnavailable, err)
	}

	r.state.History = append(r.state.History, entry)
	r.state.SetMeta(domain.MetaInteractionSaved, true)
	return nil
}
