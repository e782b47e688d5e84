package respond

import (
	"fmt"
	"math"

	"github.com/bnema/support-agent-cli/internal/domain"
)

const TruncationNotice = "...\n\n[Response truncated. Would you like more details?]"

// Footer appends the category and confidence percentage to a reply.
func Footer(resp domain.Response) string {
	return fmt.Sprintf("%s\n\n---\nCategory: %s\nConfidence: %d%%",
		resp.Text, resp.Category, int(math.Round(resp.Confidence*100)))
}

// Truncate cuts text to maxRunes runes and appends TruncationNotice. maxRunes <= 0 disables it.
func Truncate(text string, maxRunes int) string {
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}

	return string(runes[:maxRunes]) + TruncationNotice
}
