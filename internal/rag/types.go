package rag

import "context"

// Chunk is one retrieved passage from the vector index.
type Chunk struct {
	DocID   string
	ChunkID string
	Text    string
	Score   float64
}

// ContextItem is a chunk that made it into the assembled prompt, with its
// 1-based citation index. Read-only once produced.
type ContextItem struct {
	Index   int
	DocID   string
	ChunkID string
	Text    string
	Score   float64
}

// ContextMap is the full citation index -> source chunk mapping for one
// answer. Citation [n] in the answer text refers to the item with Index n.
type ContextMap []ContextItem

// Embedder turns text into a fixed-dimensionality vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher returns the nearest chunks for a vector, ordered by descending
// score. It may return fewer than topK when the index is small.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]Chunk, error)
}

// Reranker re-scores candidates against the query and returns them in
// descending relevance order, same cardinality as the input.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Chunk) ([]Chunk, error)
}

// Generator produces text from an assembled prompt. An empty or "not found"
// result is the model abstaining, not an error.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}
