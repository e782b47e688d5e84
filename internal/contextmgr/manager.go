// Package contextmgr bounds the carried conversation log: it trims old
// messages and drops pleasantries that add nothing to the next turn.
package contextmgr

import "github.com/bnema/support-agent-cli/internal/domain"

type Options struct {
	MaxMessages    int
	PreserveSystem bool
	ExcludeRoles   []domain.Role
	Filter         FilterConfig
	Keywords       Keywords
}

func DefaultOptions() Options {
	return Options{
		MaxMessages:    5,
		PreserveSystem: true,
		Filter:         DefaultFilterConfig(),
		Keywords:       DefaultKeywords(),
	}
}

type Manager struct {
	opts Options
}

func New(opts Options) *Manager {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = DefaultOptions().MaxMessages
	}
	opts.Keywords = opts.Keywords.withDefaults()

	return &Manager{opts: opts}
}

// Apply trims then filters the state's messages with the configured options.
func (m *Manager) Apply(state *domain.SessionState) {
	Trim(state, m.opts.MaxMessages, m.opts.PreserveSystem)
	m.Filter(state, m.opts.ExcludeRoles, m.opts.Filter)
}

func (m *Manager) Filter(state *domain.SessionState, excludeRoles []domain.Role, cfg FilterConfig) {
	before := len(state.Messages)
	state.Messages = FilterMessages(state.Messages, excludeRoles, cfg, m.opts.Keywords)

	state.SetMeta(domain.MetaMessagesFiltered, before-len(state.Messages))
	state.SetMeta(domain.MetaTotalBeforeFilter, before)
	state.SetMeta(domain.MetaFilterConfigUsed, cfg)
}

// Trim is a no-op, metadata included, when the log already fits.
func Trim(state *domain.SessionState, limit int, preserveSystem bool) {
	before := len(state.Messages)
	if before <= limit {
		return
	}

	state.Messages = TrimMessages(state.Messages, limit, preserveSystem)
	state.SetMeta(domain.MetaMessagesTrimmed, before-len(state.Messages))
	state.SetMeta(domain.MetaTotalBeforeTrim, before)
}
