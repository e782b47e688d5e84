package contextmgr

import (
	"regexp"
	"strings"

	"github.com/bnema/support-agent-cli/internal/domain"
)

// FilterConfig toggles the individual filters. The zero value disables all of them.
type FilterConfig struct {
	FilterGreetings     bool `mapstructure:"filter_greetings" toml:"filter_greetings"`
	FilterShort         bool `mapstructure:"filter_short" toml:"filter_short"`
	MinLength           int  `mapstructure:"min_length" toml:"min_length"`
	FilterRepetitive    bool `mapstructure:"filter_repetitive" toml:"filter_repetitive"`
	FilterNonActionable bool `mapstructure:"filter_non_actionable" toml:"filter_non_actionable"`
	PreserveImportant   bool `mapstructure:"preserve_important" toml:"preserve_important"`
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		FilterGreetings:     true,
		FilterShort:         true,
		MinLength:           10,
		FilterRepetitive:    true,
		FilterNonActionable: true,
		PreserveImportant:   true,
	}
}

// Keywords are the vocabularies the filter matches message content against.
type Keywords struct {
	Greetings     []string `mapstructure:"greetings"`
	Farewells     []string `mapstructure:"farewells"`
	NonActionable []string `mapstructure:"non_actionable"`
	Important     []string `mapstructure:"important"`
}

func DefaultKeywords() Keywords {
	return Keywords{
		Greetings:     []string{"hello", "hi", "hey", "greetings", "good morning", "good afternoon", "good evening"},
		Farewells:     []string{"bye", "goodbye", "see you", "talk to you later", "ttyl", "farewell"},
		NonActionable: []string{"ok", "okay", "thanks", "thank you", "got it", "understood", "sure", "alright"},
		Important:     []string{"password", "reset", "account", "billing", "refund", "error", "problem", "issue", "help", "support"},
	}
}

// withDefaults fills each empty list separately so a partial keywords table
// still preserves important messages.
func (k Keywords) withDefaults() Keywords {
	def := DefaultKeywords()
	if len(k.Greetings) == 0 {
		k.Greetings = def.Greetings
	}
	if len(k.Farewells) == 0 {
		k.Farewells = def.Farewells
	}
	if len(k.NonActionable) == 0 {
		k.NonActionable = def.NonActionable
	}
	if len(k.Important) == 0 {
		k.Important = def.Important
	}
	return k
}

// recentWindow is how many accepted messages a candidate is compared with for repetition.
const recentWindow = 3

type matcher struct {
	pleasantries  *regexp.Regexp
	nonActionable map[string]struct{}
	important     []string
}

func newMatcher(keywords Keywords) matcher {
	m := matcher{nonActionable: map[string]struct{}{}}

	phrases := make([]string, 0, len(keywords.Greetings)+len(keywords.Farewells))
	for _, phrase := range append(append([]string{}, keywords.Greetings...), keywords.Farewells...) {
		if phrase = normalize(phrase); phrase != "" {
			phrases = append(phrases, regexp.QuoteMeta(phrase))
		}
	}
	if len(phrases) > 0 {
		m.pleasantries = regexp.MustCompile(`\b(?:` + strings.Join(phrases, "|") + `)\b`)
	}

	for _, phrase := range keywords.NonActionable {
		m.nonActionable[normalize(phrase)] = struct{}{}
	}
	for _, keyword := range keywords.Important {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			m.important = append(m.important, keyword)
		}
	}

	return m
}

func (m matcher) isImportant(content string) bool {
	for _, keyword := range m.important {
		if strings.Contains(content, keyword) {
			return true
		}
	}
	return false
}

func (m matcher) isPleasantry(content string) bool {
	return m.pleasantries != nil && m.pleasantries.MatchString(content)
}

func (m matcher) isNonActionable(content string) bool {
	_, ok := m.nonActionable[content]
	return ok
}

// FilterMessages drops low-value messages. Rules apply in order: excluded
// role, system or important (kept), too short, greeting or farewell, exact
// non-actionable reply, repeat of a recently kept message.
func FilterMessages(messages []domain.Message, excludeRoles []domain.Role, cfg FilterConfig, keywords Keywords) []domain.Message {
	m := newMatcher(keywords)
	excluded := make(map[domain.Role]struct{}, len(excludeRoles))
	for _, role := range excludeRoles {
		excluded[role] = struct{}{}
	}

	out := make([]domain.Message, 0, len(messages))
	recent := make([]string, 0, len(messages))
	for _, msg := range messages {
		if _, drop := excluded[msg.Role]; drop {
			continue
		}

		content := normalize(msg.Content)
		accept := func() {
			out = append(out, msg)
			recent = append(recent, content)
		}

		if msg.Role == domain.RoleSystem || (cfg.PreserveImportant && m.isImportant(content)) {
			accept()
			continue
		}
		if cfg.FilterShort && len([]rune(content)) < cfg.MinLength {
			continue
		}
		if cfg.FilterGreetings && m.isPleasantry(content) {
			continue
		}
		if cfg.FilterNonActionable && m.isNonActionable(content) {
			continue
		}
		if cfg.FilterRepetitive && repeats(content, recent) {
			continue
		}

		accept()
	}

	return out
}

func repeats(content string, accepted []string) bool {
	start := max(0, len(accepted)-recentWindow)
	for _, prior := range accepted[start:] {
		if prior == content {
			return true
		}
	}
	return false
}

// normalize lower-cases text and collapses runs of whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
