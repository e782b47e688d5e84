package contextmgr

import "github.com/bnema/support-agent-cli/internal/domain"

// TrimMessages keeps at most limit messages. With preserveSystem every system
// message survives and only the newest non-system messages fill the remaining
// slots. Relative order is unchanged.
func TrimMessages(messages []domain.Message, limit int, preserveSystem bool) []domain.Message {
	limit = max(limit, 0)
	if len(messages) <= limit {
		return messages
	}

	if !preserveSystem {
		return append([]domain.Message(nil), messages[len(messages)-limit:]...)
	}

	systemCount := 0
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			systemCount++
		}
	}

	keep := max(0, limit-systemCount)
	skip := len(messages) - systemCount - keep
	out := make([]domain.Message, 0, systemCount+keep)
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			out = append(out, msg)
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, msg)
	}

	return out
}
