package analyzer

import (
	"errors"
	"strings"

	"github.com/documind/documind/apimodels"
	"github.com/documind/documind/internal/config"
)

// ErrInvalidQuery rejects empty or whitespace-only queries before any
// backend is contacted.
var ErrInvalidQuery = errors.New("query is empty or whitespace-only")

var interrogatives = []string{"what", "why", "how", "when", "where", "who", "which"}

// Static per-route estimates. They inform telemetry, never routing.
const (
	localCostUSD    = 0.0
	localLatencyMs  = 2500
	cloudCostUSD    = 0.01
	cloudLatencyMs  = 4000
	defaultMinScore = 0.6
	lowHintMinScore = 0.5
)

// Analyzer classifies queries along complexity, domain, and intent and
// recommends a route. It is pure: no I/O, deterministic for identical input.
type Analyzer struct {
	h *config.Heuristics
}

func New(h *config.Heuristics) *Analyzer {
	return &Analyzer{h: h}
}

// Analyze builds the QueryProfile for a query.
func (a *Analyzer) Analyze(query string) (QueryProfile, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return QueryProfile{}, ErrInvalidQuery
	}
	lower := strings.ToLower(trimmed)
	words := strings.Fields(lower)

	domain, density, _ := a.detectDomain(lower, len(words))
	complexity := a.classifyComplexity(lower, len(words), density)
	intent := a.classifyIntent(lower)
	route, threshold := recommendRoute(complexity, domain, intent)

	profile := QueryProfile{
		Complexity:          complexity,
		Domain:              domain,
		Intent:              intent,
		RecommendedRoute:    route,
		ConfidenceThreshold: threshold,
	}
	switch route {
	case apimodels.RouteCloud:
		profile.EstimatedCostUSD = cloudCostUSD
		profile.EstimatedLatencyMs = cloudLatencyMs
	case apimodels.RouteLocal:
		profile.EstimatedCostUSD = localCostUSD
		profile.EstimatedLatencyMs = localLatencyMs
	}
	return profile, nil
}

// DetectDomain classifies arbitrary text into a domain and reports per-domain
// keyword match counts. Exposed for the standalone domain-detection endpoint.
func (a *Analyzer) DetectDomain(text string) (Domain, float64, map[string]int) {
	lower := strings.ToLower(strings.TrimSpace(text))
	words := strings.Fields(lower)
	domain, density, matched := a.detectDomain(lower, len(words))
	if domain == DomainGeneral {
		return domain, 1.0, matched
	}
	return domain, density, matched
}

// detectDomain walks domains in priority order so a tie on density resolves
// toward the more specific domain. Anything under the minimum density falls
// back to General.
func (a *Analyzer) detectDomain(lower string, wordCount int) (Domain, float64, map[string]int) {
	matched := make(map[string]int, len(a.h.DomainKeywords)+1)
	best := DomainGeneral
	bestDensity := 0.0

	for _, name := range a.h.DomainPriority {
		keywords := a.h.DomainKeywords[name]
		count := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		matched[name] = count
		if wordCount == 0 || count == 0 {
			continue
		}
		density := float64(count) / float64(wordCount)
		if density > bestDensity {
			bestDensity = density
			best = Domain(name)
		}
	}
	matched["general"] = 0

	if bestDensity < a.h.Thresholds.DomainMinDensity {
		return DomainGeneral, 0, matched
	}
	return best, bestDensity, matched
}

func (a *Analyzer) classifyComplexity(lower string, wordCount int, jargonDensity float64) Complexity {
	if jargonDensity > a.h.Thresholds.SpecializedJargon {
		return Specialized
	}

	score := 0
	switch {
	case wordCount < 8:
	case wordCount < 20:
		score++
	case wordCount < 40:
		score += 2
	default:
		score += 3
	}

	conjunctions := 0
	for _, marker := range a.h.ConjunctionMarkers {
		if strings.Contains(lower, marker) {
			conjunctions++
		}
	}
	switch {
	case conjunctions >= 2:
		score += 2
	case conjunctions == 1:
		score++
	}

	for _, verb := range a.h.ReasoningVerbs {
		if strings.Contains(lower, verb) {
			score += 2
			break
		}
	}
	for _, verb := range a.h.ExplanatoryVerbs {
		if strings.Contains(lower, verb) {
			score++
			break
		}
	}

	switch foci := countQuestionFoci(lower); {
	case foci >= 2:
		score += 2
	case foci == 1:
		score++
	}

	switch {
	case score <= 1:
		return Simple
	case score == 2:
		return Moderate
	default:
		return Complex
	}
}

// countQuestionFoci counts distinct interrogative words appearing as whole
// words. Two or more foci usually means a multi-part question.
func countQuestionFoci(lower string) int {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == ',' || r == '?' || r == '.' || r == ';'
	})
	present := make(map[string]bool)
	for _, w := range words {
		for _, q := range interrogatives {
			if w == q {
				present[q] = true
			}
		}
	}
	return len(present)
}

func (a *Analyzer) classifyIntent(lower string) Intent {
	switch {
	case containsAny(lower, "translate", "translation of"):
		return IntentTranslation
	case containsAny(lower, "summarize", "summarise", "summary of", "tl;dr"):
		return IntentSummary
	case containsAny(lower, "extract", "list the", "list all", "pull out", "pull the"):
		return IntentExtraction
	case containsAny(lower, "generate", "write a", "write me", "create a", "compose", "draft"):
		return IntentGeneration
	}
	for _, verb := range a.h.ReasoningVerbs {
		if strings.Contains(lower, verb) {
			return IntentAnalysis
		}
	}
	if containsAny(lower, "explain", "describe", "walk me through") {
		return IntentExplanation
	}
	for _, q := range interrogatives {
		if strings.HasPrefix(lower, q+" ") || strings.HasPrefix(lower, q+"'") {
			return IntentQuestion
		}
	}
	if strings.Contains(lower, "?") {
		return IntentQuestion
	}
	return IntentExplanation
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// recommendRoute applies the routing heuristic. The cloud conditions win:
// deep reasoning and regulated-domain analysis go to the stronger model,
// everything else stays local. The returned threshold is the telemetry
// hint carried on the profile, not the scorer's escalation cutoff.
func recommendRoute(c Complexity, d Domain, i Intent) (apimodels.Route, float64) {
	if c == Complex || c == Specialized {
		return apimodels.RouteCloud, defaultMinScore
	}
	if (d == DomainLegal || d == DomainMedical || d == DomainFinancial) && i == IntentAnalysis {
		return apimodels.RouteCloud, defaultMinScore
	}
	if d == DomainGeneral || i == IntentExtraction {
		return apimodels.RouteLocal, defaultMinScore
	}
	return apimodels.RouteLocal, lowHintMinScore
}
