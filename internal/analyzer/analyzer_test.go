package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/apimodels"
	"github.com/documind/documind/internal/config"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	h, err := config.LoadHeuristics("")
	require.NoError(t, err)
	return New(h)
}

func TestAnalyzeRejectsEmptyQuery(t *testing.T) {
	a := newTestAnalyzer(t)

	for _, query := range []string{"", "   ", "\n\t "} {
		_, err := a.Analyze(query)
		assert.ErrorIs(t, err, ErrInvalidQuery, "query %q", query)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := newTestAnalyzer(t)

	queries := []string{
		"What is the company name?",
		"Analyze the legal implications of this contract's liability clause",
		"Summarize this report",
	}
	for _, q := range queries {
		first, err := a.Analyze(q)
		require.NoError(t, err)
		second, err := a.Analyze(q)
		require.NoError(t, err)
		assert.Equal(t, first, second, "query %q", q)
	}
}

func TestAnalyzeSimpleFactualQuery(t *testing.T) {
	a := newTestAnalyzer(t)

	profile, err := a.Analyze("What is the company name?")
	require.NoError(t, err)

	assert.Equal(t, Simple, profile.Complexity)
	assert.Equal(t, DomainGeneral, profile.Domain)
	assert.Equal(t, IntentQuestion, profile.Intent)
	assert.Equal(t, apimodels.RouteLocal, profile.RecommendedRoute)
}

func TestAnalyzeLegalAnalysisQuery(t *testing.T) {
	a := newTestAnalyzer(t)

	profile, err := a.Analyze("Analyze the legal implications of this contract's liability clause")
	require.NoError(t, err)

	assert.Equal(t, Complex, profile.Complexity)
	assert.Equal(t, DomainLegal, profile.Domain)
	assert.Equal(t, IntentAnalysis, profile.Intent)
	assert.Equal(t, apimodels.RouteCloud, profile.RecommendedRoute)
}

func TestAnalyzeIntents(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		query string
		want  Intent
	}{
		{"Summarize this report", IntentSummary},
		{"Translate this paragraph to French", IntentTranslation},
		{"Extract all invoice numbers from the document", IntentExtraction},
		{"Write a poem about autumn", IntentGeneration},
		{"Explain the backup retention policy", IntentExplanation},
		{"Evaluate the vendor proposals", IntentAnalysis},
		{"Who signed the agreement?", IntentQuestion},
	}
	for _, tc := range tests {
		profile, err := a.Analyze(tc.query)
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.want, profile.Intent, "query %q", tc.query)
	}
}

func TestAnalyzeDomains(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		query string
		want  Domain
	}{
		{"What are the patient's symptoms and diagnosis?", DomainMedical},
		{"What is the mortgage default risk in this portfolio?", DomainFinancial},
		{"How do I configure the kubernetes deployment pipeline?", DomainTechnical},
		{"What is the weather like today?", DomainGeneral},
	}
	for _, tc := range tests {
		profile, err := a.Analyze(tc.query)
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.want, profile.Domain, "query %q", tc.query)
	}
}

func TestAnalyzeMultiPartQueryIsComplex(t *testing.T) {
	a := newTestAnalyzer(t)

	profile, err := a.Analyze("Compare the liability terms in plan A versus plan B and recommend which is safer")
	require.NoError(t, err)

	assert.Equal(t, Complex, profile.Complexity)
	assert.Equal(t, apimodels.RouteCloud, profile.RecommendedRoute)
}

func TestAnalyzeRouteEstimates(t *testing.T) {
	a := newTestAnalyzer(t)

	local, err := a.Analyze("What is the company name?")
	require.NoError(t, err)
	assert.Equal(t, int64(localLatencyMs), local.EstimatedLatencyMs)
	assert.Zero(t, local.EstimatedCostUSD)

	cloud, err := a.Analyze("Analyze the legal implications of this contract's liability clause")
	require.NoError(t, err)
	assert.Equal(t, int64(cloudLatencyMs), cloud.EstimatedLatencyMs)
	assert.Greater(t, cloud.EstimatedCostUSD, 0.0)
}

func TestAnalyzeConfidenceThresholdHints(t *testing.T) {
	a := newTestAnalyzer(t)

	general, err := a.Analyze("What is the company name?")
	require.NoError(t, err)
	assert.InDelta(t, defaultMinScore, general.ConfidenceThreshold, 1e-9)

	technical, err := a.Analyze("Explain the backup retention policy")
	require.NoError(t, err)
	assert.InDelta(t, lowHintMinScore, technical.ConfidenceThreshold, 1e-9)
}

func TestDetectDomainReportsMatchCounts(t *testing.T) {
	a := newTestAnalyzer(t)

	domain, confidence, matched := a.DetectDomain(
		"This contract agreement contains liability clauses that require jurisdiction review.")

	assert.Equal(t, DomainLegal, domain)
	assert.Greater(t, confidence, 0.0)
	assert.Greater(t, matched["legal"], 0)
	assert.Contains(t, matched, "general")
}

func TestDetectDomainFallsBackToGeneral(t *testing.T) {
	a := newTestAnalyzer(t)

	domain, confidence, _ := a.DetectDomain("hello there, nice day")
	assert.Equal(t, DomainGeneral, domain)
	assert.Equal(t, 1.0, confidence)
}
