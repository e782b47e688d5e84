package toml

import (
	"fmt"
	"time"
)

const currentSchemaVersion = 1

func applyVersion(version *int) {
	if *version == 0 {
		*version = currentSchemaVersion
	}
}

func validateVersion(label string, version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported %s schema version %d (current %d)", label, version, currentSchemaVersion)
	}

	return nil
}

type historyFileSchema struct {
	Version     int                  `toml:"version"`
	UserID      string               `toml:"user_id"`
	LastUpdated string               `toml:"last_updated,omitempty"`
	Entries     []historyEntrySchema `toml:"user_history"`
}

type historyEntrySchema struct {
	Query      string            `toml:"query"`
	Resolution string            `toml:"resolution"`
	Timestamp  string            `toml:"timestamp"`
	Metadata   map[string]string `toml:"metadata,omitempty"`
}

type sessionsFileSchema struct {
	Version  int             `toml:"version"`
	Sessions []sessionSchema `toml:"sessions"`
}

type sessionSchema struct {
	UserID         string          `toml:"user_id"`
	ThreadID       string          `toml:"thread_id"`
	UpdatedAt      string          `toml:"updated_at"`
	ReviewDecision *bool           `toml:"review_decision,omitempty"`
	Messages       []messageSchema `toml:"messages"`
}

type messageSchema struct {
	Role      string `toml:"role"`
	Content   string `toml:"content"`
	Timestamp string `toml:"timestamp"`
}

type escalationsFileSchema struct {
	Version     int                `toml:"version"`
	Escalations []escalationSchema `toml:"escalations"`
}

type escalationSchema struct {
	ID             string `toml:"id"`
	UserID         string `toml:"user_id"`
	ThreadID       string `toml:"thread_id"`
	Query          string `toml:"query"`
	Draft          string `toml:"draft"`
	Category       string `toml:"category"`
	Reason         string `toml:"reason,omitempty"`
	ProposedAction string `toml:"proposed_action,omitempty"`
	Status         string `toml:"status"`
	Feedback       string `toml:"feedback,omitempty"`
	CreatedAt      string `toml:"created_at"`
	ResolvedAt     string `toml:"resolved_at,omitempty"`
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
