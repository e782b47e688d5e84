package application

import "github.com/bnema/support-agent-cli/internal/domain"

type ProcessTurnCommand struct {
	UserID   string
	ThreadID string
	Query    string
}

type ResolveEscalationCommand struct {
	UserID   string
	ThreadID string
	Approved bool
	Feedback string
}

type ResolveEscalationByIDCommand struct {
	ID       domain.EscalationID
	Approved bool
	Feedback string
}

type OpenEscalationCommand struct {
	UserID   string
	ThreadID string
	Query    string
	Draft    string
	Category domain.Category
	Reason   string
}
