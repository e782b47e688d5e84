package domain

import "time"

// Transcript is the bounded message log carried between turns of one thread.
type Transcript struct {
	UserID    string
	ThreadID  string
	Messages  []Message
	UpdatedAt time.Time
	// ReviewDecision is the outcome of the last resolved escalation of the
	// thread, kept until the next completed turn consumes it.
	ReviewDecision *bool
}
