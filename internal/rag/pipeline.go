package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/documind/documind/internal/config"
)

// AbstainAnswer is returned when the local path has no grounding for the
// query. An explicit abstain beats a fabricated answer.
const AbstainAnswer = "not found in local context"

// ErrGenerationUnavailable reports a local generator failure. The
// orchestrator treats it as a signal to escalate to the cloud path.
var ErrGenerationUnavailable = errors.New("local generator unavailable")

// errRetrievalUnavailable never crosses the pipeline boundary; retrieval
// failures degrade to an abstain instead.
var errRetrievalUnavailable = errors.New("retrieval unavailable")

// Pipeline is the local route sequencer: embed -> vector search -> rerank ->
// prompt assembly -> local generation.
type Pipeline struct {
	embedder  Embedder
	searcher  Searcher
	reranker  Reranker
	generator Generator
	cfg       config.RetrievalConfig
}

func New(embedder Embedder, searcher Searcher, reranker Reranker, generator Generator, cfg config.RetrievalConfig) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		searcher:  searcher,
		reranker:  reranker,
		generator: generator,
		cfg:       cfg,
	}
}

// Run executes the local path for a query. Retrieval failures degrade to an
// abstain answer with an empty context map; only a generator failure returns
// an error (ErrGenerationUnavailable), so the orchestrator can escalate.
func (p *Pipeline) Run(ctx context.Context, query string) (string, ContextMap, error) {
	ranked, err := p.retrieve(ctx, query, p.cfg.TopK)
	if err != nil {
		slog.Warn("retrieval degraded to abstain", "error", err)
		return AbstainAnswer, ContextMap{}, nil
	}
	if len(ranked) == 0 {
		slog.Info("no chunks retrieved, abstaining", "query", query)
		return AbstainAnswer, ContextMap{}, nil
	}

	prompt, cmap := BuildPrompt(query, ranked, p.cfg.ContextK)

	answer, err := p.generator.Generate(ctx, prompt, p.cfg.Temperature)
	if err != nil {
		slog.Error("local generation failed", "error", err)
		return "", cmap, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	answer = strings.TrimSpace(answer)
	if isAbstain(answer) {
		slog.Info("local generator abstained", "query", query)
		return AbstainAnswer, cmap, nil
	}
	return answer, cmap, nil
}

// Preview runs retrieval and reranking only, for the search endpoint.
func (p *Pipeline) Preview(ctx context.Context, query string, k int) ([]Chunk, error) {
	if k <= 0 {
		k = p.cfg.TopK
	}
	return p.retrieve(ctx, query, k)
}

func (p *Pipeline) retrieve(ctx context.Context, query string, topK int) ([]Chunk, error) {
	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %v", errRetrievalUnavailable, err)
	}

	hits, err := p.searcher.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", errRetrievalUnavailable, err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ranked, err := p.reranker.Rerank(ctx, query, hits)
	if err != nil {
		return nil, fmt.Errorf("%w: rerank: %v", errRetrievalUnavailable, err)
	}
	return ranked, nil
}

func isAbstain(answer string) bool {
	if answer == "" {
		return true
	}
	lower := strings.ToLower(answer)
	return lower == "not found" || lower == AbstainAnswer
}
