package respond

import (
	"strings"
	"testing"

	"github.com/bnema/support-agent-cli/internal/classify"
	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEscalationAlwaysRequiresReview(t *testing.T) {
	t.Parallel()

	gen := New(DefaultCatalog())
	resp := gen.Generate("I want a refund", domain.Classification{
		Category:       domain.CategoryEscalation,
		Confidence:     1,
		RequiresReview: true,
	}, nil)

	assert.Equal(t, domain.SourceEscalation, resp.Source)
	assert.True(t, resp.RequiresReview)
	assert.Contains(t, resp.Text, "escalating your query to our human support team")
}

func TestPasswordResetScenarioUsesScriptedAnswer(t *testing.T) {
	t.Parallel()

	cls := classify.New(classify.DefaultCatalog())
	gen := New(DefaultCatalog())

	query := "How do I reset my password?"
	classification := cls.Classify(query)
	require.Equal(t, domain.CategoryAuthentication, classification.Category)

	resp := gen.Generate(query, classification, nil)

	assert.False(t, resp.RequiresReview)
	assert.Equal(t, domain.SourceScripted, resp.Source)
	assert.InDelta(t, 0.95, resp.Confidence, 1e-9)
	assert.True(t, strings.HasPrefix(resp.Text, "To reset your password:"))
	for _, step := range []string{"1. ", "2. ", "3. ", "4. ", "5. "} {
		assert.Contains(t, resp.Text, step)
	}
}

func TestCannedAnswer(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	gen := New(catalog)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "exact match ignores case and padding", query: "  My Session Keeps Timing Out Why ", want: catalog.AuthAnswers[9].Answer},
		{name: "word overlap above half", query: "my account is locked", want: catalog.AuthAnswers[2].Answer},
		{name: "no close question falls back", query: "authenticator app broken after phone upgrade today", want: catalog.AuthFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, gen.CannedAnswer(tt.query))
		})
	}
}

func TestGenerateKnowledgeBaseAndClarification(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	gen := New(catalog)

	kb := gen.Generate("billing invoice", domain.Classification{Category: classify.CategoryBilling, Confidence: 2.0 / 3.0}, nil)
	assert.Equal(t, domain.SourceKnowledgeBase, kb.Source)
	assert.Equal(t, catalog.Templates[classify.CategoryBilling], kb.Text)

	low := gen.Generate("what does cost mean", domain.Classification{Category: classify.CategoryBilling, Confidence: 1.0 / 3.0}, nil)
	assert.Equal(t, domain.SourceKnowledgeBase, low.Source, "1/3 is above the 0.3 threshold")

	general := gen.Generate("tell me about your company", domain.Classification{Category: domain.CategoryGeneral}, nil)
	assert.Equal(t, domain.SourceClarification, general.Source)
	assert.Contains(t, general.Text, `Thank you for your question about "tell me about your company".`)
	assert.False(t, general.RequiresReview)
}

func TestGenerateAddsHistoryNoteForRelatedQueries(t *testing.T) {
	t.Parallel()

	gen := New(DefaultCatalog())
	history := []domain.HistoryEntry{
		{Query: "unrelated weather question", Resolution: "r", Timestamp: "2026-01-01T00:00:00Z"},
		{Query: "how do I download my invoice history", Resolution: "r", Timestamp: "2026-01-02T00:00:00Z"},
	}

	related := gen.Generate("where is the invoice history page", domain.Classification{Category: classify.CategoryBilling, Confidence: 1.0 / 3.0}, history)
	assert.True(t, strings.HasPrefix(related.Text, "I see you previously asked about similar topics. "))
	assert.True(t, strings.HasSuffix(related.Text, "Based on your history, I can also help with any follow-up questions."))

	unrelated := gen.Generate("where is the invoice", domain.Classification{Category: classify.CategoryBilling, Confidence: 1.0 / 3.0}, history)
	assert.False(t, strings.HasPrefix(unrelated.Text, "I see you previously"), "one shared word is not enough")
}

func TestRelatedOnlyLooksAtRecentHistory(t *testing.T) {
	t.Parallel()

	gen := New(DefaultCatalog())
	history := []domain.HistoryEntry{
		{Query: "invoice history download"},
		{Query: "one"},
		{Query: "two"},
		{Query: "three"},
	}

	assert.False(t, gen.related("invoice history", history))
	assert.True(t, gen.related("invoice history", history[:3]))
}

func TestRelatedIgnoresStopwords(t *testing.T) {
	t.Parallel()

	gen := New(DefaultCatalog())
	history := []domain.HistoryEntry{{Query: "how can I do what is the thing"}}

	assert.False(t, gen.related("how can my thing", history))
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()

	resp := domain.Response{Text: "hello", Category: classify.CategoryBilling, Confidence: 0.666}
	assert.Equal(t, "hello\n\n---\nCategory: billing\nConfidence: 67%", Footer(resp))

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "short", Truncate("short", 0))
	assert.Equal(t, "abc"+TruncationNotice, Truncate("abcdef", 3))
}
