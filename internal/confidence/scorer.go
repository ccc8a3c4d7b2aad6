package confidence

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/documind/documind/apimodels"
	"github.com/documind/documind/internal/config"
	"github.com/documind/documind/internal/rag"
)

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "from": true, "what": true, "when": true, "where": true,
	"which": true, "will": true, "would": true, "could": true, "should": true,
	"about": true, "into": true, "over": true, "your": true, "their": true,
	"there": true, "have": true, "been": true, "were": true, "does": true,
	"they": true, "them": true, "then": true, "than": true, "these": true,
	"those": true, "some": true, "each": true, "other": true, "more": true,
	"most": true, "also": true, "just": true, "very": true, "such": true,
	"between": true, "during": true, "through": true, "under": true,
	"please": true,
}

// Scorer evaluates answers against their context map. Pure over its inputs:
// no I/O, deterministic for identical input.
type Scorer struct {
	h *config.Heuristics
}

func NewScorer(h *config.Heuristics) *Scorer {
	return &Scorer{h: h}
}

// Evaluate produces the composite confidence score for an answer. The route
// selects the component weighting and whether escalation is even possible.
func (s *Scorer) Evaluate(query, answer string, cmap rag.ContextMap, route apimodels.Route) Score {
	trimmed := strings.TrimSpace(answer)
	lower := strings.ToLower(trimmed)

	citation := s.scoreCitations(trimmed, lower, len(cmap), route)
	queryContent := contentWords(query)
	response, overlapRatio := s.scoreResponse(trimmed, lower, queryContent)
	contextRel := s.scoreContext(queryContent, cmap)

	var wc, wr, wx float64
	switch route {
	case apimodels.RouteLocal:
		wc, wr, wx = s.h.Weights.LocalCitation, s.h.Weights.LocalResponse, s.h.Weights.LocalContext
	case apimodels.RouteCloud:
		wc, wr, wx = s.h.Weights.CloudCitation, s.h.Weights.CloudResponse, s.h.Weights.CloudContext
	default:
		wc, wr, wx = s.h.Weights.BalancedCitation, s.h.Weights.BalancedResponse, s.h.Weights.BalancedContext
	}
	overall := round3(clamp01(wc*citation.Score + wr*response.Score + wx*contextRel.Score))

	// Cloud answers never escalate: there is no further fallback target.
	escalate := false
	if route != apimodels.RouteCloud {
		escalate = overall < s.h.Thresholds.Escalation ||
			citation.HasHallucinations ||
			!response.Coherent ||
			!response.Relevant
	}

	return Score{
		Citation:       citation,
		Response:       response,
		Context:        contextRel,
		Overall:        overall,
		ShouldEscalate: escalate,
		Reasoning:      buildReasoning(overall, citation, response, contextRel, len(cmap)),
		Metrics: DetailedMetrics{
			SentenceCount:      countSentences(trimmed),
			AnswerWordCount:    len(strings.Fields(trimmed)),
			QueryContentWords:  len(queryContent),
			AnswerOverlapRatio: round3(overlapRatio),
			ContextItemCount:   len(cmap),
		},
	}
}

// scoreCitations extracts bracketed citation markers and validates each
// against 1..contextCount. An out-of-range index is a hallucination signal,
// never silently accepted.
func (s *Scorer) scoreCitations(answer, lower string, contextCount int, route apimodels.Route) CitationQuality {
	matches := citationPattern.FindAllStringSubmatch(answer, -1)
	valid, invalid := 0, 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > contextCount {
			invalid++
			continue
		}
		valid++
	}

	phraseHallucination := containsAnyPhrase(lower, s.h.HallucinationPhrases)
	q := CitationQuality{
		CitationCount:     len(matches),
		HasValidCitations: valid > 0,
		HasHallucinations: invalid > 0 || phraseHallucination,
	}

	if route == apimodels.RouteCloud {
		// No local context was supplied, so citation markers carry no weight.
		if phraseHallucination {
			q.Score = 0.3
		} else {
			q.Score = 0.7
		}
		return q
	}

	switch {
	case q.HasValidCitations && !q.HasHallucinations:
		sentences := countSentences(answer)
		if sentences < 1 {
			sentences = 1
		}
		q.Score = math.Min(1.0, float64(valid)/float64(sentences))
	case q.HasValidCitations && q.HasHallucinations:
		q.Score = 0.6
	case q.HasHallucinations:
		q.Score = 0.2
	default:
		q.Score = 0.4
	}
	return q
}

func (s *Scorer) scoreResponse(answer, lower string, queryContent []string) (ResponseQuality, float64) {
	uncertain := containsAnyPhrase(lower, s.h.UncertaintyPhrases)
	hallucinated := containsAnyPhrase(lower, s.h.HallucinationPhrases)
	confident := containsAnyPhrase(lower, s.h.ConfidencePhrases)

	words := strings.Fields(answer)
	coherent := len(words) > 3 && len(answer) >= 20 && !isPureCodeFence(answer)

	overlapRatio := 0.0
	relevant := true
	if len(queryContent) > 0 {
		answerWords := wordSet(contentWords(lower))
		hits := 0
		for _, w := range queryContent {
			if answerWords[w] {
				hits++
			}
		}
		overlapRatio = float64(hits) / float64(len(queryContent))
		relevant = overlapRatio > s.h.Thresholds.AnswerOverlap
	}

	complete := !uncertain && len(answer) >= s.h.Thresholds.MinAnswerChars
	accurate := !uncertain && (confident || !hallucinated)

	q := ResponseQuality{
		Coherent: coherent,
		Relevant: relevant,
		Complete: complete,
		Accurate: accurate,
	}
	for _, pass := range []bool{coherent, relevant, complete, accurate} {
		if pass {
			q.Score += 0.25
		}
	}
	return q, overlapRatio
}

// scoreContext measures word overlap between query content words and each
// context item's identifiers. An empty map scores zero ("no context").
func (s *Scorer) scoreContext(queryContent []string, cmap rag.ContextMap) ContextRelevance {
	if len(cmap) == 0 {
		return ContextRelevance{}
	}

	query := wordSet(queryContent)
	relevantCount := 0
	totalOverlap := 0.0
	for _, item := range cmap {
		idWords := contentWords(item.DocID + " " + item.ChunkID)
		overlap := 0.0
		if len(queryContent) > 0 {
			hits := 0
			for _, w := range idWords {
				if query[w] {
					hits++
				}
			}
			overlap = float64(hits) / float64(len(queryContent))
		}
		totalOverlap += overlap
		if overlap > s.h.Thresholds.ChunkOverlap {
			relevantCount++
		}
	}
	avg := totalOverlap / float64(len(cmap))

	return ContextRelevance{
		RelevantChunks:    relevantCount,
		AverageOverlap:    round3(avg),
		SufficientContext: relevantCount >= 2 && avg > s.h.Thresholds.SufficientOverlap,
		Score:             math.Min(1.0, avg*2),
	}
}

func buildReasoning(overall float64, cit CitationQuality, resp ResponseQuality, ctxRel ContextRelevance, contextCount int) string {
	var labels []string
	switch {
	case overall >= 0.8:
		labels = append(labels, "High confidence")
	case overall >= 0.6:
		labels = append(labels, "moderate confidence")
	default:
		labels = append(labels, "low confidence")
	}
	if cit.HasHallucinations {
		labels = append(labels, "hallucination signals present")
	} else if cit.HasValidCitations {
		labels = append(labels, "well-cited")
	}
	if resp.Accurate && resp.Complete {
		labels = append(labels, "accurate and complete")
	} else if !resp.Complete {
		labels = append(labels, "possibly incomplete")
	}
	if contextCount > 0 && !ctxRel.SufficientContext {
		labels = append(labels, "limited context support")
	}
	reasoning := strings.Join(labels, ", ")
	return strings.ToUpper(reasoning[:1]) + reasoning[1:]
}

func countSentences(text string) int {
	count := 0
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// contentWords returns lowercased words longer than three characters that
// are not stopwords.
func contentWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var out []string
	for _, w := range fields {
		if len(w) > 3 && !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func containsAnyPhrase(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func isPureCodeFence(answer string) bool {
	t := strings.TrimSpace(answer)
	return strings.HasPrefix(t, "```") && strings.HasSuffix(t, "```")
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
