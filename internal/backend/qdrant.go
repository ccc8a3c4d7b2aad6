package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/documind/documind/internal/config"
	"github.com/documind/documind/internal/rag"
)

// Qdrant queries a Qdrant collection over its REST API.
type Qdrant struct {
	url        string
	collection string
	client     *http.Client
}

func NewQdrant(cfg config.QdrantConfig) (*Qdrant, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL cannot be empty")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection cannot be empty")
	}
	return &Qdrant{
		url:        strings.TrimRight(cfg.URL, "/"),
		collection: cfg.Collection,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []searchPoint `json:"result"`
}

type searchPoint struct {
	ID      any           `json:"id"`
	Score   float64       `json:"score"`
	Payload searchPayload `json:"payload"`
}

type searchPayload struct {
	Text  string `json:"text"`
	DocID string `json:"doc_id"`
}

// Search returns up to topK nearest chunks, ordered by descending score.
func (q *Qdrant) Search(ctx context.Context, vector []float32, topK int) ([]rag.Chunk, error) {
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)

	var resp searchResponse
	err := postJSON(ctx, q.client, url, searchRequest{
		Vector:      vector,
		Limit:       topK,
		WithPayload: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	chunks := make([]rag.Chunk, 0, len(resp.Result))
	for _, p := range resp.Result {
		chunks = append(chunks, rag.Chunk{
			DocID:   p.Payload.DocID,
			ChunkID: pointID(p.ID),
			Text:    p.Payload.Text,
			Score:   p.Score,
		})
	}
	slog.Debug("vector search completed", "collection", q.collection, "hits", len(chunks))
	return chunks, nil
}

// pointID normalizes Qdrant point IDs, which may be integers or UUID strings.
func pointID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprint(v)
	}
}
