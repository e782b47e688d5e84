// Package classify scores support queries against keyword catalogs and decides
// whether a query needs human review.
package classify

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bnema/support-agent-cli/internal/domain"
)

type Classifier struct {
	catalog Catalog
}

func New(catalog Catalog) *Classifier {
	return &Classifier{catalog: catalog.withDefaults()}
}

// Classify checks escalation first, then authentication intent, then the knowledge base.
func (c *Classifier) Classify(query string) domain.Classification {
	if escalate, reason := c.RequiresReview(query); escalate {
		return domain.Classification{
			Category:       domain.CategoryEscalation,
			Confidence:     1.0,
			RequiresReview: true,
			Reason:         reason,
		}
	}

	if c.IsAuthentication(query) {
		return domain.Classification{
			Category:   domain.CategoryAuthentication,
			Confidence: c.catalog.AuthConfidence,
		}
	}

	category, confidence := c.Score(query)
	return domain.Classification{Category: category, Confidence: confidence}
}

// Score returns the best knowledge-base category and its confidence, or
// general with zero confidence when nothing matches.
func (c *Classifier) Score(query string) (domain.Category, float64) {
	lower := strings.ToLower(query)

	best := domain.CategoryGeneral
	bestHits := 0
	for _, entry := range c.catalog.Categories {
		hits := 0
		for _, keyword := range entry.Keywords {
			if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
				hits++
			}
		}
		if hits > bestHits {
			best = entry.Category
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return domain.CategoryGeneral, 0
	}

	return best, math.Min(float64(bestHits)/c.catalog.HitsForFullScore, 1.0)
}

// RequiresReview reports whether the query must go to a human, with the first matching reason.
func (c *Classifier) RequiresReview(query string) (bool, string) {
	lower := strings.ToLower(query)
	for _, trigger := range c.catalog.EscalationTriggers {
		if trigger != "" && strings.Contains(lower, strings.ToLower(trigger)) {
			return true, fmt.Sprintf("escalation trigger %q", trigger)
		}
	}

	if n := strings.Count(query, "?"); n > c.catalog.MaxQuestionMarks {
		return true, fmt.Sprintf("%d question marks", n)
	}

	if isShouting(query) && utf8.RuneCountInString(query) > c.catalog.ShoutingMinLength {
		return true, "query is all upper-case"
	}

	return false, ""
}

func (c *Classifier) IsAuthentication(query string) bool {
	lower := strings.ToLower(query)
	for _, keyword := range c.catalog.AuthKeywords {
		if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// isShouting is true when the text has at least one cased letter and no lower-case ones.
func isShouting(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}
