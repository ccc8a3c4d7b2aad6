package analyzer

import "github.com/documind/documind/apimodels"

// Complexity estimates how much reasoning a query demands.
type Complexity string

const (
	Simple      Complexity = "simple"
	Moderate    Complexity = "moderate"
	Complex     Complexity = "complex"
	Specialized Complexity = "specialized"
)

// Domain is the subject area a query belongs to. General is the fallback
// when no specific domain reaches the minimum keyword density.
type Domain string

const (
	DomainGeneral   Domain = "general"
	DomainTechnical Domain = "technical"
	DomainLegal     Domain = "legal"
	DomainMedical   Domain = "medical"
	DomainFinancial Domain = "financial"
	DomainCode      Domain = "code"
	DomainCreative  Domain = "creative"
	DomainResearch  Domain = "research"
)

// Intent captures what kind of response the user is after.
type Intent string

const (
	IntentQuestion    Intent = "question"
	IntentExplanation Intent = "explanation"
	IntentSummary     Intent = "summary"
	IntentAnalysis    Intent = "analysis"
	IntentGeneration  Intent = "generation"
	IntentTranslation Intent = "translation"
	IntentExtraction  Intent = "extraction"
)

// QueryProfile is the full classification of one query. It is built once
// per request and never mutated afterwards.
type QueryProfile struct {
	Complexity Complexity `json:"complexity"`
	Domain     Domain     `json:"domain"`
	Intent     Intent     `json:"intent"`

	// RecommendedRoute is advisory; routing policy may override it
	RecommendedRoute apimodels.Route `json:"recommendedRoute"`

	// ConfidenceThreshold is a per-query strictness hint reported through
	// the analyze endpoint; the escalation decision itself uses the
	// scorer's configured cutoff
	ConfidenceThreshold float64 `json:"confidenceThreshold"`

	// Static per-route estimates, exposed for telemetry only
	EstimatedCostUSD   float64 `json:"estimatedCostUsd"`
	EstimatedLatencyMs int64   `json:"estimatedLatencyMs"`
}
