package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Metadata keys written by the pipeline stages. Readers must tolerate any of them being absent.
const (
	MetaCreatedAt          = "created_at"
	MetaTurnStart          = "turn_start_index"
	MetaCurrentQuery       = "current_query"
	MetaHistoryLoaded      = "history_loaded"
	MetaHistoryCount       = "history_count"
	MetaResponseCategory   = "response_category"
	MetaResponseConfidence = "response_confidence"
	MetaResponseSource     = "response_source"
	MetaHITLRequested      = "hitl_requested"
	MetaHITLReason         = "hitl_reason"
	MetaInteractionSaved   = "interaction_saved"
	MetaMessagesTrimmed    = "messages_trimmed"
	MetaTotalBeforeTrim    = "total_messages_before_trim"
	MetaMessagesFiltered   = "messages_filtered"
	MetaTotalBeforeFilter  = "total_messages_before_filter"
	MetaFilterConfigUsed   = "filter_config_used"
)

// SessionState is the value threaded through one pipeline run.
type SessionState struct {
	Messages       []Message
	History        []HistoryEntry
	UserID         string
	ThreadID       string
	Metadata       map[string]any
	RequiresReview bool
	ReviewDecision *bool
}

func NewSessionState(userID, threadID string, createdAt time.Time) (*SessionState, error) {
	state := &SessionState{
		Messages: []Message{},
		History:  []HistoryEntry{},
		UserID:   userID,
		ThreadID: threadID,
		Metadata: map[string]any{MetaCreatedAt: FormatTimestamp(createdAt)},
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// SessionSeparator joins user and thread ids in a session id. Ids may not contain it,
// so every session id maps back to exactly one pair.
const SessionSeparator = ":"

func ValidateUserID(userID string) error {
	return validateIdentifier("user_id", userID)
}

func ValidateIdentifiers(userID, threadID string) error {
	return errors.Join(ValidateUserID(userID), validateIdentifier("thread_id", threadID))
}

func validateIdentifier(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, field+" cannot be empty")
	}
	if strings.Contains(value, SessionSeparator) {
		return invalid(field, fmt.Sprintf("%s cannot contain %q", field, SessionSeparator))
	}
	return nil
}

// Validate checks identifiers, every message and every history entry.
func (s *SessionState) Validate() error {
	if s == nil {
		return invalid("session", "session state is nil")
	}

	errs := []error{ValidateIdentifiers(s.UserID, s.ThreadID)}
	for i, msg := range s.Messages {
		if err := msg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("message at index %d: %w", i, err))
		}
	}
	for i, entry := range s.History {
		if err := entry.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("history entry at index %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func (s *SessionState) SessionID() string {
	return SessionID(s.UserID, s.ThreadID)
}

func SessionID(userID, threadID string) string {
	return userID + SessionSeparator + threadID
}

func (s *SessionState) AppendMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// BeginTurn marks the current end of the message log; messages appended
// afterwards belong to the new turn.
func (s *SessionState) BeginTurn() {
	s.SetMeta(MetaTurnStart, len(s.Messages))
}

// TurnMessages returns the messages appended since BeginTurn, or the whole log
// when no turn boundary was recorded.
func (s *SessionState) TurnMessages() []Message {
	start, ok := s.Metadata[MetaTurnStart].(int)
	if !ok || start < 0 || start > len(s.Messages) {
		return s.Messages
	}

	return s.Messages[start:]
}

func (s *SessionState) SetMeta(key string, value any) {
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata[key] = value
}

func (s *SessionState) MetaString(key string) (string, bool) {
	value, ok := s.Metadata[key].(string)
	if !ok {
		return "", false
	}

	return value, true
}
