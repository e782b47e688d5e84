package transcript

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/support-agent-cli/internal/application"
	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/bnema/support-agent-cli/internal/respond"
	"github.com/charmbracelet/lipgloss"
)

type TurnOptions struct {
	// MaxChars truncates the reply; zero keeps it whole.
	MaxChars int
	// ShowMeta adds the category/confidence footer.
	ShowMeta bool
}

func RenderSession(info application.SessionInfo) (string, error) {
	return run(func(s styles) string {
		lines := []string{
			s.title.Render("Customer Support Agent"),
			s.header.Render(fmt.Sprintf("session: %s", info.SessionID)),
			s.meta.Render(fmt.Sprintf("previous interactions: %d", info.HistoryCount)),
		}
		if info.Resumed {
			lines = append(lines, s.meta.Render(fmt.Sprintf("resumed with %d carried messages", info.MessageCount)))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	})
}

func RenderTurn(turn application.TurnResult, opts TurnOptions) (string, error) {
	return run(func(s styles) string {
		return renderTurn(turn, opts, s)
	})
}

func renderTurn(turn application.TurnResult, opts TurnOptions, s styles) string {
	text := respond.Truncate(turn.ResponseText, opts.MaxChars)
	if opts.ShowMeta && turn.Category != "" {
		text = respond.Footer(domain.Response{Text: text, Category: turn.Category, Confidence: turn.Confidence})
	}

	lines := []string{
		s.agent.Render("Agent:"),
		s.body.Render(text),
	}

	if opts.ShowMeta && turn.Category != "" {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.meta.Render("confidence "),
			renderBar(turn.Confidence, 20, s),
		))
	}

	if turn.RequiresReview {
		notice := "Escalated for human review."
		if turn.EscalationID != "" {
			notice = fmt.Sprintf("Escalated for human review (id %s).", turn.EscalationID)
		}
		lines = append(lines, s.warning.Render(notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func RenderHistory(userID string, entries []domain.HistoryEntry) (string, error) {
	return run(func(s styles) string {
		lines := []string{
			s.title.Render("Interaction History"),
			s.header.Render(fmt.Sprintf("user: %s  entries: %d", userID, len(entries))),
		}

		if len(entries) == 0 {
			lines = append(lines, s.empty.Render("No history yet."))
			return lipgloss.JoinVertical(lipgloss.Left, lines...)
		}

		for i, entry := range entries {
			block := []string{
				s.user.Render(fmt.Sprintf("%d. %s", i+1, entry.Query)),
				s.meta.Render(historyMeta(entry)),
				s.body.Render(firstLine(entry.Resolution)),
			}
			lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, block...)))
		}

		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	})
}

func RenderEscalations(escalations []domain.Escalation, now time.Time) (string, error) {
	return run(func(s styles) string {
		lines := []string{
			s.title.Render("Escalations"),
			s.header.Render(fmt.Sprintf("total: %d", len(escalations))),
		}

		if len(escalations) == 0 {
			lines = append(lines, s.empty.Render("No escalations."))
			return lipgloss.JoinVertical(lipgloss.Left, lines...)
		}

		for _, e := range escalations {
			block := []string{
				lipgloss.JoinHorizontal(lipgloss.Top,
					s.agent.Render(string(e.ID)), " ", statusLabel(e.Status, s)),
				s.meta.Render(fmt.Sprintf("session %s, opened %s", domain.SessionID(e.UserID, e.ThreadID), formatAge(e.CreatedAt, now))),
				s.user.Render("Query: ") + s.body.Render(e.Query),
				s.user.Render("Proposed action: ") + s.body.Render(e.ProposedAction),
			}
			if e.Reason != "" {
				block = append(block, s.meta.Render("Reason: "+e.Reason))
			}
			if e.Feedback != "" {
				block = append(block, s.meta.Render("Feedback: "+e.Feedback))
			}
			lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, block...)))
		}

		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	})
}

func RenderResolution(resolution application.Resolution) (string, error) {
	return run(func(s styles) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, s.title.Render("Escalation "), statusLabel(resolution.Status, s)),
			s.header.Render("session: "+resolution.SessionID),
			s.body.Render(resolution.Message),
		)
	})
}

func statusLabel(status domain.EscalationStatus, s styles) string {
	label := "[" + string(status) + "]"
	switch status {
	case domain.EscalationApproved:
		return s.success.Render(label)
	case domain.EscalationPending:
		return s.warning.Render(label)
	default:
		return s.meta.Render(label)
	}
}

func historyMeta(entry domain.HistoryEntry) string {
	parts := []string{entry.Timestamp}
	if category := entry.Meta("category"); category != "" {
		parts = append(parts, "category "+category)
	}
	if thread := entry.Meta("thread_id"); thread != "" {
		parts = append(parts, "thread "+thread)
	}
	return strings.Join(parts, "  ")
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}

func formatAge(createdAt, now time.Time) string {
	if now.IsZero() || createdAt.IsZero() {
		return createdAt.Format(time.RFC3339)
	}

	age := now.Sub(createdAt)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}

func renderBar(fraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * math.Max(0, math.Min(1, fraction))))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}
