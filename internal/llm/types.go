package llm

import "context"

// Provider is the cloud generator contract. It receives the raw user query
// and an optional system prompt; no local context is attached on the cloud
// path.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userQuery string, opts ...Option) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

type Response struct {
	Content string
	Model   string
	Usage   Usage
}
