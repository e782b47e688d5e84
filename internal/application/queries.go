package application

import "github.com/bnema/support-agent-cli/internal/domain"

type SessionInfo struct {
	SessionID    string
	UserID       string
	ThreadID     string
	HistoryCount int
	// MessageCount is the size of the carried transcript; zero for a new thread.
	MessageCount int
	Resumed      bool
}

type TurnResult struct {
	SessionID      string
	ResponseText   string
	RequiresReview bool
	ReviewDecision *bool
	Category       domain.Category
	Confidence     float64
	Source         domain.ResponseSource
	EscalationID   domain.EscalationID
	Path           []string
	Metadata       map[string]any
}

type Resolution struct {
	SessionID  string
	Status     domain.EscalationStatus
	Message    string
	Escalation domain.Escalation
}

type EscalationFilter struct {
	Status domain.EscalationStatus
	UserID string
}

func (f EscalationFilter) Match(e domain.Escalation) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	return true
}
