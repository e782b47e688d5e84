// Package respond turns a classified query into the reply text shown to the user.
package respond

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bnema/support-agent-cli/internal/domain"
)

var wordPattern = regexp.MustCompile(`\w+`)

type Generator struct {
	catalog   Catalog
	stopwords map[string]struct{}
}

func New(catalog Catalog) *Generator {
	catalog = catalog.withDefaults()
	stopwords := make(map[string]struct{}, len(catalog.Stopwords))
	for _, word := range catalog.Stopwords {
		stopwords[strings.ToLower(word)] = struct{}{}
	}

	return &Generator{catalog: catalog, stopwords: stopwords}
}

func (g *Generator) Generate(query string, classification domain.Classification, history []domain.HistoryEntry) domain.Response {
	resp := domain.Response{
		Category:       classification.Category,
		Confidence:     classification.Confidence,
		RequiresReview: classification.RequiresReview,
	}

	switch {
	case classification.RequiresReview || classification.Category == domain.CategoryEscalation:
		resp.Text = g.catalog.EscalationReply
		resp.RequiresReview = true
		resp.Source = domain.SourceEscalation
	case classification.Category == domain.CategoryAuthentication:
		resp.Text = g.CannedAnswer(query)
		resp.Source = domain.SourceScripted
	default:
		text, source := g.knowledgeBase(query, classification)
		if g.related(query, history) {
			text = g.catalog.HistoryPrefix + text + g.catalog.HistorySuffix
		}
		resp.Text = text
		resp.Source = source
	}

	return resp
}

// CannedAnswer returns the scripted answer for an authentication query.
func (g *Generator) CannedAnswer(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	for _, canned := range g.catalog.AuthAnswers {
		if strings.ToLower(canned.Question) == normalized {
			return canned.Answer
		}
	}

	queryWords := wordSet(strings.Fields(normalized))
	for _, canned := range g.catalog.AuthAnswers {
		if overlap(queryWords, wordSet(strings.Fields(strings.ToLower(canned.Question)))) > g.catalog.MatchThreshold {
			return canned.Answer
		}
	}

	return g.catalog.AuthFallback
}

func (g *Generator) knowledgeBase(query string, classification domain.Classification) (string, domain.ResponseSource) {
	if classification.Confidence > g.catalog.TemplateThreshold {
		if template, ok := g.catalog.Templates[classification.Category]; ok {
			return template, domain.SourceKnowledgeBase
		}
	}

	return fmt.Sprintf(g.catalog.Clarification, query), domain.SourceClarification
}

// related reports whether any recent history query shares enough meaningful words with query.
func (g *Generator) related(query string, history []domain.HistoryEntry) bool {
	if len(history) == 0 {
		return false
	}

	words := g.meaningful(query)
	if len(words) == 0 {
		return false
	}

	recent := history
	if len(recent) > g.catalog.RecentHistory {
		recent = recent[len(recent)-g.catalog.RecentHistory:]
	}

	for _, entry := range recent {
		shared := 0
		for word := range g.meaningful(entry.Query) {
			if _, ok := words[word]; ok {
				shared++
			}
		}
		if shared >= g.catalog.RelatedMinShared {
			return true
		}
	}

	return false
}

func (g *Generator) meaningful(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := g.stopwords[word]; !stop {
			out[word] = struct{}{}
		}
	}
	return out
}

func wordSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, word := range words {
		out[word] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) float64 {
	smaller := min(len(a), len(b))
	if smaller == 0 {
		return 0
	}

	shared := 0
	for word := range a {
		if _, ok := b[word]; ok {
			shared++
		}
	}
	return float64(shared) / float64(smaller)
}
