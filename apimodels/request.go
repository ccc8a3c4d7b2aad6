package apimodels

type AskRequest struct {
	// Query is the natural language question to answer
	Query string `json:"query"`

	// Optional parameters to control routing behavior
	Options AskOptions `json:"options,omitempty"`
}

type AskOptions struct {
	// Model overrides the cloud model for this request (e.g. "gpt-4o")
	Model string `json:"model,omitempty"`

	// MaxTokens limits the cloud response length
	MaxTokens int64 `json:"maxTokens,omitempty"`
}

type AnalyzeRequest struct {
	// Query is the natural language query to classify
	Query string `json:"query"`
}

type DomainDetectRequest struct {
	// Text to run domain detection against
	Text string `json:"text"`
}
