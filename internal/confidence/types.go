package confidence

// CitationQuality reports how well an answer's [n] citations line up with
// the context map it was generated from.
type CitationQuality struct {
	CitationCount     int     `json:"citationCount"`
	HasValidCitations bool    `json:"hasValidCitations"`
	HasHallucinations bool    `json:"hasHallucinations"`
	Score             float64 `json:"score"`
}

// ResponseQuality is four independent boolean checks, weighted equally.
type ResponseQuality struct {
	Coherent bool    `json:"coherent"`
	Relevant bool    `json:"relevant"`
	Complete bool    `json:"complete"`
	Accurate bool    `json:"accurate"`
	Score    float64 `json:"score"`
}

// ContextRelevance measures how much of the retrieved context actually
// relates to the query.
type ContextRelevance struct {
	RelevantChunks    int     `json:"relevantChunks"`
	AverageOverlap    float64 `json:"averageOverlap"`
	SufficientContext bool    `json:"sufficientContext"`
	Score             float64 `json:"score"`
}

// DetailedMetrics carries the raw counts behind the component scores.
// Fixed fields, not a metadata bag, so consumers get compile-time checks.
type DetailedMetrics struct {
	SentenceCount      int     `json:"sentenceCount"`
	AnswerWordCount    int     `json:"answerWordCount"`
	QueryContentWords  int     `json:"queryContentWords"`
	AnswerOverlapRatio float64 `json:"answerOverlapRatio"`
	ContextItemCount   int     `json:"contextItemCount"`
}

// Score is the full composite assessment of one answer. Recomputed fresh per
// answer, never persisted across requests.
type Score struct {
	Citation CitationQuality  `json:"citation"`
	Response ResponseQuality  `json:"response"`
	Context  ContextRelevance `json:"context"`

	// Overall is the route-weighted combination, always in [0, 1]
	Overall float64 `json:"overall"`

	// ShouldEscalate is always false for cloud answers: there is no
	// further fallback target
	ShouldEscalate bool `json:"shouldEscalate"`

	// Reasoning is for observability only, never control flow
	Reasoning string `json:"reasoning"`

	Metrics DetailedMetrics `json:"metrics"`
}
