package domain

type Category string

const (
	CategoryEscalation     Category = "escalation"
	CategoryAuthentication Category = "authentication"
	CategoryGeneral        Category = "general"
)

type Classification struct {
	Category       Category
	Confidence     float64
	RequiresReview bool
	// Reason explains why review is required; empty otherwise.
	Reason string
}

type ResponseSource string

const (
	SourceEscalation    ResponseSource = "escalation"
	SourceScripted      ResponseSource = "scripted"
	SourceKnowledgeBase ResponseSource = "knowledge_base"
	SourceClarification ResponseSource = "clarification"
)

type Response struct {
	Text           string
	Category       Category
	Confidence     float64
	RequiresReview bool
	Source         ResponseSource
}
