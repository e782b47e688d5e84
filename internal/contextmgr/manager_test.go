package contextmgr

import (
	"testing"
	"time"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func msgs(pairs ...string) []domain.Message {
	out := make([]domain.Message, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Message{
			Role:      domain.Role(pairs[i]),
			Content:   pairs[i+1],
			Timestamp: baseTime.Add(time.Duration(i) * time.Second),
		})
	}
	return out
}

func contents(messages []domain.Message) []string {
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		out = append(out, msg.Content)
	}
	return out
}

func newState(t *testing.T, messages []domain.Message) *domain.SessionState {
	t.Helper()
	state, err := domain.NewSessionState("user-1", "thread-1", baseTime)
	require.NoError(t, err)
	state.Messages = messages
	return state
}

func TestTrimKeepsSystemAndNewestMessages(t *testing.T) {
	t.Parallel()

	state := newState(t, msgs(
		"system", "sys",
		"user", "u1",
		"assistant", "a1",
		"user", "u2",
		"assistant", "a2",
		"user", "u3",
		"assistant", "a3",
	))

	Trim(state, 5, true)

	if diff := cmp.Diff([]string{"sys", "u2", "a2", "u3", "a3"}, contents(state.Messages)); diff != "" {
		t.Fatalf("Trim() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, state.Metadata[domain.MetaMessagesTrimmed])
	assert.Equal(t, 7, state.Metadata[domain.MetaTotalBeforeTrim])
}

func TestTrimWithoutSystemMessagesKeepsNewest(t *testing.T) {
	t.Parallel()

	state := newState(t, msgs(
		"user", "m1",
		"assistant", "m2",
		"user", "m3",
		"assistant", "m4",
		"user", "m5",
		"assistant", "m6",
		"user", "m7",
	))

	Trim(state, 5, true)

	assert.Equal(t, []string{"m3", "m4", "m5", "m6", "m7"}, contents(state.Messages))
	assert.Equal(t, 2, state.Metadata[domain.MetaMessagesTrimmed])
	assert.Equal(t, 7, state.Metadata[domain.MetaTotalBeforeTrim])
}

func TestTrimPreservesInterleavedOrder(t *testing.T) {
	t.Parallel()

	in := msgs(
		"user", "u1",
		"system", "s1",
		"user", "u2",
		"assistant", "a2",
		"system", "s2",
		"user", "u3",
	)

	got := TrimMessages(in, 4, true)

	assert.Equal(t, []string{"s1", "a2", "s2", "u3"}, contents(got))
}

func TestTrimWithoutSystemPreservation(t *testing.T) {
	t.Parallel()

	in := msgs("system", "s", "user", "u1", "assistant", "a1", "user", "u2")

	assert.Equal(t, []string{"a1", "u2"}, contents(TrimMessages(in, 2, false)))
}

func TestTrimKeepsOnlySystemWhenTheyFillTheBudget(t *testing.T) {
	t.Parallel()

	in := msgs("system", "s1", "user", "u1", "system", "s2", "user", "u2")

	assert.Equal(t, []string{"s1", "s2"}, contents(TrimMessages(in, 2, true)))
	assert.Equal(t, []string{"s1", "s2"}, contents(TrimMessages(in, 1, true)), "system messages are never dropped")
}

func TestTrimIsIdempotent(t *testing.T) {
	t.Parallel()

	in := msgs("system", "s", "user", "u1", "assistant", "a1", "user", "u2", "assistant", "a2", "user", "u3", "assistant", "a3")

	once := TrimMessages(in, 4, true)
	twice := TrimMessages(once, 4, true)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second trim changed messages (-once +twice):\n%s", diff)
	}
}

func TestTrimUnderLimitLeavesMetadataUntouched(t *testing.T) {
	t.Parallel()

	state := newState(t, msgs("user", "u1", "assistant", "a1"))
	Trim(state, 5, true)

	assert.Len(t, state.Messages, 2)
	assert.NotContains(t, state.Metadata, domain.MetaMessagesTrimmed)
}

func TestFilterMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      []domain.Message
		exclude []domain.Role
		cfg     FilterConfig
		want    []string
	}{
		{
			name: "drops pleasantries and short replies",
			in: msgs(
				"user", "hello there friend",
				"user", "ok",
				"user", "thank you",
				"user", "the export button does nothing now",
				"user", "goodbye and take care",
			),
			cfg:  DefaultFilterConfig(),
			want: []string{"the export button does nothing now"},
		},
		{
			name: "important keyword beats greeting and length",
			in:   msgs("user", "hi, help", "user", "hey password"),
			cfg:  DefaultFilterConfig(),
			want: []string{"hi, help", "hey password"},
		},
		{
			name: "system messages always survive",
			in:   msgs("system", "hi", "user", "hi"),
			cfg:  DefaultFilterConfig(),
			want: []string{"hi"},
		},
		{
			name: "greeting words inside other words are kept",
			in:   msgs("user", "this changed everything for the export"),
			cfg:  DefaultFilterConfig(),
			want: []string{"this changed everything for the export"},
		},
		{
			name: "duplicates ignore case and spacing",
			in: msgs(
				"user", "where can I find the export page",
				"user", "Where  can I find the EXPORT page",
			),
			cfg:  DefaultFilterConfig(),
			want: []string{"where can I find the export page"},
		},
		{
			name: "repeat outside the recent window is kept",
			in: msgs(
				"user", "where is the export page",
				"user", "first different question",
				"user", "second different question",
				"user", "third different question",
				"user", "where is the export page",
			),
			cfg: DefaultFilterConfig(),
			want: []string{
				"where is the export page",
				"first different question",
				"second different question",
				"third different question",
				"where is the export page",
			},
		},
		{
			name:    "excluded roles go first",
			in:      msgs("system", "policy", "assistant", "a reply with help", "user", "a question about exports"),
			exclude: []domain.Role{domain.RoleSystem, domain.RoleAssistant},
			cfg:     DefaultFilterConfig(),
			want:    []string{"a question about exports"},
		},
		{
			name: "zero config keeps everything",
			in:   msgs("user", "hi", "user", "ok", "user", "ok"),
			cfg:  FilterConfig{},
			want: []string{"hi", "ok", "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FilterMessages(tt.in, tt.exclude, tt.cfg, DefaultKeywords())
			if diff := cmp.Diff(tt.want, contents(got)); diff != "" {
				t.Fatalf("FilterMessages() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterKeepsDuplicateImportantMessages(t *testing.T) {
	t.Parallel()

	in := msgs(
		"user", "I need help",
		"assistant", "Sure, what is going on?",
		"user", "I need help",
	)

	got := FilterMessages(in, nil, DefaultFilterConfig(), DefaultKeywords())

	assert.Equal(t, []string{"I need help", "Sure, what is going on?", "I need help"}, contents(got))
}

func TestManagerApplyRecordsMetadata(t *testing.T) {
	t.Parallel()

	state := newState(t, msgs(
		"system", "You are a support agent.",
		"user", "hello",
		"assistant", "How can I help you today?",
		"user", "thanks",
		"user", "How do I reset my password?",
		"assistant", "To reset your password: follow the steps.",
		"user", "ok",
	))

	New(DefaultOptions()).Apply(state)

	assert.Equal(t, 2, state.Metadata[domain.MetaMessagesTrimmed])
	assert.Equal(t, 5, state.Metadata[domain.MetaTotalBeforeFilter])
	assert.Equal(t, 2, state.Metadata[domain.MetaMessagesFiltered])
	assert.Equal(t, DefaultFilterConfig(), state.Metadata[domain.MetaFilterConfigUsed])
	assert.Equal(t, []string{
		"You are a support agent.",
		"How do I reset my password?",
		"To reset your password: follow the steps.",
	}, contents(state.Messages))
}

func TestNewFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	m := New(Options{})
	assert.Equal(t, 5, m.opts.MaxMessages)
	assert.Equal(t, DefaultKeywords(), m.opts.Keywords)
}

func TestNewDefaultsEachKeywordListSeparately(t *testing.T) {
	t.Parallel()

	m := New(Options{Keywords: Keywords{Greetings: []string{"howdy"}}})

	assert.Equal(t, []string{"howdy"}, m.opts.Keywords.Greetings)
	assert.Equal(t, DefaultKeywords().Important, m.opts.Keywords.Important)
	assert.Equal(t, DefaultKeywords().Farewells, m.opts.Keywords.Farewells)

	state := newState(t, msgs("user", "help"))
	m.Filter(state, nil, DefaultFilterConfig())
	assert.Equal(t, []string{"help"}, contents(state.Messages))
}
