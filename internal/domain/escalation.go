package domain

import (
	"strings"
	"time"
)

type EscalationID string

type EscalationStatus string

const (
	EscalationPending  EscalationStatus = "pending"
	EscalationApproved EscalationStatus = "approved"
	EscalationRejected EscalationStatus = "rejected"
	EscalationExpired  EscalationStatus = "expired"
)

// Escalation is a turn parked for human review.
type Escalation struct {
	ID             EscalationID
	UserID         string
	ThreadID       string
	Query          string
	Draft          string
	Category       Category
	Reason         string
	ProposedAction string
	Status         EscalationStatus
	Feedback       string
	CreatedAt      time.Time
	ResolvedAt     time.Time
}

func (e Escalation) Pending() bool {
	return e.Status == EscalationPending
}

// Expired reports whether a pending escalation outlived ttl. A non-positive ttl never expires.
func (e Escalation) Expired(now time.Time, ttl time.Duration) bool {
	if !e.Pending() || ttl <= 0 {
		return false
	}

	return now.Sub(e.CreatedAt) > ttl
}

// ProposedAction describes what a reviewer is approving for the given query.
func ProposedAction(query string) string {
	q := strings.ToLower(query)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("password") && has("reset", "forgot"):
		return "Send password reset link to user's registered email address"
	case has("account") && has("locked"):
		return "Unlock user account and send confirmation email"
	case has("refund", "billing"):
		return "Process refund request and update billing records"
	case has("2fa", "two-factor"):
		return "Provide 2FA setup instructions and backup codes"
	case has("delete") && has("account"):
		return "Initiate account deletion process (30-day grace period)"
	case has("subscription") && has("cancel"):
		return "Cancel subscription and provide confirmation"
	case has("security", "breach"):
		return "Escalate to security team for immediate investigation"
	case has("legal", "lawsuit"):
		return "Forward to legal department for review"
	default:
		return "Provide comprehensive support response with escalation option"
	}
}
