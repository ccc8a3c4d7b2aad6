package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/apimodels"
	"github.com/documind/documind/internal/analyzer"
	"github.com/documind/documind/internal/config"
	"github.com/documind/documind/internal/confidence"
	"github.com/documind/documind/internal/llm"
	"github.com/documind/documind/internal/rag"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2}, nil
}

type fakeSearcher struct {
	chunks []rag.Chunk
}

func (f *fakeSearcher) Search(ctx context.Context, vector []float32, topK int) ([]rag.Chunk, error) {
	return f.chunks, nil
}

type identityReranker struct{}

func (identityReranker) Rerank(ctx context.Context, query string, candidates []rag.Chunk) ([]rag.Chunk, error) {
	return candidates, nil
}

type fakeGenerator struct {
	answer string
	err    error
	delay  time.Duration
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

type fakeCloud struct {
	content string
	err     error
	delay   time.Duration
	calls   int
}

func (f *fakeCloud) Generate(ctx context.Context, systemPrompt, userQuery string, opts ...llm.Option) (*llm.Response, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content, Model: "gpt-4o-mini"}, nil
}

type harness struct {
	orch     *Orchestrator
	embedder *fakeEmbedder
	local    *fakeGenerator
	cloud    *fakeCloud
}

func defaultRouting() config.RoutingConfig {
	return config.RoutingConfig{
		LocalFirst:   true,
		LocalTimeout: 5 * time.Second,
		CloudTimeout: 5 * time.Second,
	}
}

// newHarness wires an orchestrator over in-memory fakes. A nil cloud disables
// the cloud path, mirroring a deployment without an API key.
func newHarness(t *testing.T, local *fakeGenerator, cloud *fakeCloud, routing config.RoutingConfig) *harness {
	t.Helper()
	h, err := config.LoadHeuristics("")
	require.NoError(t, err)

	emb := &fakeEmbedder{}
	search := &fakeSearcher{chunks: []rag.Chunk{
		{DocID: "disaster_recovery_runbook.md", ChunkID: "3", Text: "Failover promotes the standby replica.", Score: 0.9},
		{DocID: "backup_policy.md", ChunkID: "7", Text: "Backups run nightly.", Score: 0.5},
	}}
	pipeline := rag.New(emb, search, identityReranker{}, local, config.RetrievalConfig{TopK: 12, ContextK: 4, Temperature: 0.1})

	var provider llm.Provider
	if cloud != nil {
		provider = cloud
	}
	orch := New(analyzer.New(h), pipeline, provider, confidence.NewScorer(h), routing)
	return &harness{orch: orch, embedder: emb, local: local, cloud: cloud}
}

const runbookQuery = "What does the disaster recovery runbook say about failover?"

// confidentAnswer scores above the escalation threshold on the local route:
// one clean sentence with one valid citation against the runbook chunk.
const confidentAnswer = "The runbook promotes the standby replica during the failover procedure [1]"

// shakyAnswer cites a chunk that is not in the context map, which marks the
// answer as hallucinated and forces escalation.
const shakyAnswer = "The system probably reboots itself [9]"

func TestHandleRejectsInvalidQueryBeforeAnyBackendCall(t *testing.T) {
	h := newHarness(t, &fakeGenerator{answer: "unused"}, &fakeCloud{content: "unused"}, defaultRouting())

	_, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: "   "})
	assert.ErrorIs(t, err, analyzer.ErrInvalidQuery)
	assert.Zero(t, h.embedder.calls)
	assert.Zero(t, h.cloud.calls)
}

func TestHandleLocalAnswerAboveThresholdStaysLocal(t *testing.T) {
	h := newHarness(t, &fakeGenerator{answer: confidentAnswer, delay: 5 * time.Millisecond}, &fakeCloud{content: "unused"}, defaultRouting())

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, apimodels.RouteLocal, res.Route)
	assert.Equal(t, confidentAnswer, res.Answer.Text)
	assert.False(t, res.Confidence.ShouldEscalate)
	assert.False(t, res.Degraded)
	assert.Zero(t, h.cloud.calls)
	assert.NotEmpty(t, res.RequestID)
	assert.Len(t, res.ContextMap, 2)
	assert.Positive(t, res.Timings.LocalMs)
	assert.Zero(t, res.Timings.CloudMs, "cloud path never ran")
}

func TestHandleEscalatesLowConfidenceLocalAnswerOnce(t *testing.T) {
	cloud := &fakeCloud{content: "The runbook promotes the standby replica within five minutes of a failover.", delay: 5 * time.Millisecond}
	h := newHarness(t, &fakeGenerator{answer: shakyAnswer, delay: 5 * time.Millisecond}, cloud, defaultRouting())

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, apimodels.RouteCloud, res.Route)
	assert.Equal(t, cloud.content, res.Answer.Text)
	assert.Equal(t, 1, cloud.calls)
	assert.False(t, res.Confidence.ShouldEscalate, "cloud answers never escalate again")
	assert.False(t, res.Degraded)
	assert.Empty(t, res.ContextMap, "cloud answers carry no retrieval context")
	assert.Positive(t, res.Timings.LocalMs, "an escalated result reports the local attempt's elapsed time")
	assert.Positive(t, res.Timings.CloudMs)
}

func TestHandleLocalTimeoutEscalatesToCloud(t *testing.T) {
	routing := defaultRouting()
	routing.LocalTimeout = 20 * time.Millisecond
	cloud := &fakeCloud{content: "The standby replica takes over within five minutes of a failover."}
	h := newHarness(t, &fakeGenerator{answer: confidentAnswer, delay: 5 * time.Second}, cloud, routing)

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, apimodels.RouteCloud, res.Route)
	assert.Equal(t, cloud.content, res.Answer.Text)
	assert.Equal(t, 1, h.local.calls)
	assert.Equal(t, 1, cloud.calls)
	assert.False(t, res.Degraded)
	assert.Positive(t, res.Timings.LocalMs, "the timed-out local attempt still reports its elapsed time")
}

func TestHandleWeakCloudAnswerDoesNotEscalateAgain(t *testing.T) {
	cloud := &fakeCloud{content: "??"}
	h := newHarness(t, &fakeGenerator{answer: shakyAnswer}, cloud, defaultRouting())

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, 1, cloud.calls)
	assert.Equal(t, apimodels.RouteCloud, res.Route)
	assert.False(t, res.Confidence.ShouldEscalate)
}

func TestHandleFailedEscalationKeepsScoredLocalAnswer(t *testing.T) {
	cloud := &fakeCloud{err: errors.New("rate limited")}
	h := newHarness(t, &fakeGenerator{answer: shakyAnswer}, cloud, defaultRouting())

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, 1, cloud.calls)
	assert.Equal(t, apimodels.RouteLocal, res.Route)
	assert.Equal(t, shakyAnswer, res.Answer.Text)
	assert.False(t, res.Degraded, "a real local answer is not a degraded result")
}

func TestHandleLocalGeneratorFailureFallsBackToCloud(t *testing.T) {
	cloud := &fakeCloud{content: "Failover promotes the standby replica."}
	h := newHarness(t, &fakeGenerator{err: errors.New("ollama down")}, cloud, defaultRouting())

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, apimodels.RouteCloud, res.Route)
	assert.Equal(t, 1, cloud.calls)
	assert.False(t, res.Degraded)
}

func TestHandleLocalGeneratorFailureWithoutCloudDegrades(t *testing.T) {
	h := newHarness(t, &fakeGenerator{err: errors.New("ollama down")}, nil, defaultRouting())

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err, "backend failures never surface as handler errors")

	assert.Equal(t, apimodels.RouteLocal, res.Route)
	assert.Equal(t, rag.AbstainAnswer, res.Answer.Text)
	assert.True(t, res.Degraded)
}

func TestHandleLocalOnlyBlocksEscalation(t *testing.T) {
	routing := defaultRouting()
	routing.LocalOnly = true
	cloud := &fakeCloud{content: "unused"}
	h := newHarness(t, &fakeGenerator{answer: shakyAnswer}, cloud, routing)

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, apimodels.RouteLocal, res.Route)
	assert.Zero(t, cloud.calls)
	assert.Equal(t, shakyAnswer, res.Answer.Text)
}

func TestHandleCloudFirstSkipsLocalPath(t *testing.T) {
	routing := defaultRouting()
	routing.LocalFirst = false
	gen := &fakeGenerator{answer: "unused"}
	cloud := &fakeCloud{content: "Answer from the cloud."}
	h := newHarness(t, gen, cloud, routing)

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, apimodels.RouteCloud, res.Route)
	assert.Zero(t, gen.calls)
	assert.Zero(t, h.embedder.calls)
	assert.Equal(t, 1, cloud.calls)
}

func TestHandleCloudFirstFailureDegrades(t *testing.T) {
	routing := defaultRouting()
	routing.LocalFirst = false
	cloud := &fakeCloud{err: errors.New("upstream 500")}
	h := newHarness(t, &fakeGenerator{answer: "unused"}, cloud, routing)

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, apimodels.RouteCloud, res.Route)
	assert.True(t, res.Degraded)
	assert.Equal(t, rag.AbstainAnswer, res.Answer.Text)
}

func TestHandleAbstainEscalatesWhenCloudAvailable(t *testing.T) {
	cloud := &fakeCloud{content: "The standby replica takes over automatically during a failover event."}
	h := newHarness(t, &fakeGenerator{answer: "not found"}, cloud, defaultRouting())

	res, err := h.orch.Handle(context.Background(), apimodels.AskRequest{Query: runbookQuery})
	require.NoError(t, err)

	assert.Equal(t, apimodels.RouteCloud, res.Route)
	assert.Equal(t, 1, cloud.calls)
}

func TestEscalationHopFiresExactlyOnce(t *testing.T) {
	hop := &escalationHop{}
	assert.True(t, hop.fire())
	assert.False(t, hop.fire())
	assert.False(t, hop.fire())
}
