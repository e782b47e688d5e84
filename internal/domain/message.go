package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

func NewMessage(role Role, content string, timestamp time.Time) (Message, error) {
	msg := Message{Role: role, Content: content, Timestamp: timestamp}
	if err := msg.Validate(); err != nil {
		return Message{}, err
	}

	return msg, nil
}

func (m Message) Validate() error {
	if !m.Role.Valid() {
		return invalid("message role", fmt.Sprintf("unsupported role %q", m.Role))
	}
	if m.Timestamp.IsZero() {
		return invalid("message timestamp", "timestamp is required")
	}

	return nil
}

// legacyRoles maps loose message kinds onto the canonical roles.
var legacyRoles = map[string]Role{
	"system":    RoleSystem,
	"user":      RoleUser,
	"human":     RoleUser,
	"assistant": RoleAssistant,
	"ai":        RoleAssistant,
}

// MessageFromMap migrates a loosely shaped message ({role|type, content,
// timestamp}) into a Message. A missing timestamp falls back to the given time.
func MessageFromMap(raw map[string]any, fallback time.Time) (Message, error) {
	if raw == nil {
		return Message{}, invalid("message", "message is nil")
	}

	roleValue, ok := raw["role"]
	if !ok {
		roleValue, ok = raw["type"]
	}
	if !ok {
		return Message{}, invalid("message role", "role is required")
	}
	roleName, ok := roleValue.(string)
	if !ok {
		return Message{}, invalid("message role", fmt.Sprintf("role must be a string, got %T", roleValue))
	}
	role, ok := legacyRoles[strings.ToLower(strings.TrimSpace(roleName))]
	if !ok {
		return Message{}, invalid("message role", fmt.Sprintf("unsupported role %q", roleName))
	}

	contentValue, ok := raw["content"]
	if !ok {
		return Message{}, invalid("message content", "content is required")
	}
	content, ok := contentValue.(string)
	if !ok {
		return Message{}, invalid("message content", fmt.Sprintf("content must be a string, got %T", contentValue))
	}

	timestamp := fallback
	switch ts := raw["timestamp"].(type) {
	case nil:
	case time.Time:
		timestamp = ts
	case string:
		parsed, err := ParseTimestamp(ts)
		if err != nil {
			return Message{}, err
		}
		timestamp = parsed
	default:
		return Message{}, invalid("message timestamp", fmt.Sprintf("timestamp must be a string, got %T", ts))
	}

	return NewMessage(role, content, timestamp)
}
