package classify

import "github.com/bnema/support-agent-cli/internal/domain"

// Knowledge-base categories, in scoring order.
const (
	CategoryPasswordReset  domain.Category = "password_reset"
	CategoryBilling        domain.Category = "billing"
	CategoryFeatures       domain.Category = "features"
	CategoryAccount        domain.Category = "account"
	CategoryTechnicalIssue domain.Category = "technical_issue"
)

type CategoryKeywords struct {
	Category domain.Category `mapstructure:"category"`
	Keywords []string        `mapstructure:"keywords"`
}

// Catalog holds every keyword set the classifier scores against.
type Catalog struct {
	// Categories is ordered; ties keep the earlier category.
	Categories         []CategoryKeywords `mapstructure:"categories"`
	EscalationTriggers []string           `mapstructure:"escalation_triggers"`
	AuthKeywords       []string           `mapstructure:"auth_keywords"`
	MaxQuestionMarks   int                `mapstructure:"max_question_marks"`
	ShoutingMinLength  int                `mapstructure:"shouting_min_length"`
	AuthConfidence     float64            `mapstructure:"auth_confidence"`
	HitsForFullScore   float64            `mapstructure:"hits_for_full_score"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Categories: []CategoryKeywords{
			{Category: CategoryPasswordReset, Keywords: []string{"password", "reset", "forgot", "login", "access"}},
			{Category: CategoryBilling, Keywords: []string{"billing", "payment", "invoice", "charge", "subscription", "cost"}},
			{Category: CategoryFeatures, Keywords: []string{"feature", "how to", "tutorial", "guide", "use"}},
			{Category: CategoryAccount, Keywords: []string{"account", "profile", "settings", "preferences"}},
			{Category: CategoryTechnicalIssue, Keywords: []string{"error", "bug", "not working", "crash", "issue", "problem"}},
		},
		EscalationTriggers: []string{
			"refund", "legal", "escalate", "manager", "complaint",
			"lawsuit", "security breach", "data leak", "unauthorized access",
			"fraud", "billing dispute", "cancel subscription",
		},
		AuthKeywords: []string{
			"password", "login", "log in", "sign in", "access", "account",
			"credentials", "locked", "reset", "forgot", "change",
			"2fa", "two-factor", "authentication", "authenticator",
			"session", "timeout", "email", "username", "invalid",
		},
		MaxQuestionMarks:  2,
		ShoutingMinLength: 20,
		AuthConfidence:    0.95,
		HitsForFullScore:  3,
	}
}

// withDefaults fills zero-valued thresholds so a partially configured catalog still classifies.
func (c Catalog) withDefaults() Catalog {
	def := DefaultCatalog()
	if len(c.Categories) == 0 {
		c.Categories = def.Categories
	}
	if len(c.EscalationTriggers) == 0 {
		c.EscalationTriggers = def.EscalationTriggers
	}
	if len(c.AuthKeywords) == 0 {
		c.AuthKeywords = def.AuthKeywords
	}
	if c.MaxQuestionMarks <= 0 {
		c.MaxQuestionMarks = def.MaxQuestionMarks
	}
	if c.ShoutingMinLength <= 0 {
		c.ShoutingMinLength = def.ShoutingMinLength
	}
	if c.AuthConfidence <= 0 {
		c.AuthConfidence = def.AuthConfidence
	}
	if c.HitsForFullScore <= 0 {
		c.HitsForFullScore = def.HitsForFullScore
	}
	return c
}
