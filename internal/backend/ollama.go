package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/documind/documind/internal/config"
)

// Ollama talks to a local Ollama server for both embeddings and generation.
type Ollama struct {
	url        string
	model      string
	embedModel string
	client     *http.Client
}

func NewOllama(cfg config.OllamaConfig) (*Ollama, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ollama URL cannot be empty")
	}
	return &Ollama{
		url:        strings.TrimRight(cfg.URL, "/"),
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the embedding vector for text. Deterministic for identical
// text; dimensionality is fixed by the deployed embedding model.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	err := postJSON(ctx, o.client, o.url+"/api/embeddings", embedRequest{
		Model:  o.embedModel,
		Prompt: text,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding model %s returned an empty vector", o.embedModel)
	}
	return resp.Embedding, nil
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate runs non-streaming completion against the local model.
func (o *Ollama) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	slog.Debug("calling local generator", "model", o.model, "temperature", temperature)

	var resp generateResponse
	err := postJSON(ctx, o.client, o.url+"/api/generate", generateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: temperature},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("local generation request failed: %w", err)
	}
	return resp.Response, nil
}
