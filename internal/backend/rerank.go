package backend

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/documind/documind/internal/config"
	"github.com/documind/documind/internal/rag"
)

// Reranker calls a Jina-compatible cross-encoder rerank endpoint.
type Reranker struct {
	url    string
	client *http.Client
}

func NewReranker(cfg config.RerankConfig) (*Reranker, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("rerank URL cannot be empty")
	}
	return &Reranker{
		url:    strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Rerank re-scores the candidate set against the query and returns it in
// descending relevance order, same cardinality as the input.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []rag.Chunk) ([]rag.Chunk, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Text
	}

	var resp rerankResponse
	err := postJSON(ctx, r.client, r.url+"/rerank", rerankRequest{
		Query:     query,
		Documents: documents,
		TopN:      len(documents),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("rerank failed: %w", err)
	}

	ranked := make([]rag.Chunk, 0, len(candidates))
	seen := make(map[int]bool, len(resp.Results))
	for _, res := range resp.Results {
		if res.Index < 0 || res.Index >= len(candidates) || seen[res.Index] {
			continue
		}
		seen[res.Index] = true
		c := candidates[res.Index]
		c.Score = res.RelevanceScore
		ranked = append(ranked, c)
	}
	// Preserve cardinality if the endpoint dropped any candidate.
	for i, c := range candidates {
		if !seen[i] {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked, nil
}
