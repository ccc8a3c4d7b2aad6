package apimodels

// Route identifies which generation path produced an answer. The set is
// closed: every answer comes from either the local RAG path or the cloud
// model, and routing code switches exhaustively over these two values.
type Route string

const (
	RouteLocal Route = "local"
	RouteCloud Route = "cloud"
)

type AskResponse struct {
	// Request identifier, also attached to every log line for the request
	RequestID string `json:"requestId"`

	// The route that produced the final answer
	Route Route `json:"route"`

	// The generated answer text
	Answer string `json:"answer"`

	// Citation index -> source chunk mapping for the final answer
	ContextMap []ContextRef `json:"contextMap"`

	// Composite confidence for the final answer, 0..1
	Confidence float64 `json:"confidence"`

	// Human-readable confidence reasoning, for observability only
	Reasoning string `json:"reasoning"`

	// True when every usable path failed and the answer is an abstain
	Degraded bool `json:"degraded"`

	// Elapsed time for each attempted path
	Timings Timings `json:"timings"`
}

type ContextRef struct {
	Index   int     `json:"index"`
	DocID   string  `json:"docId"`
	ChunkID string  `json:"chunkId"`
	Score   float64 `json:"score"`
}

type Timings struct {
	LocalMs int64 `json:"localMs"`
	CloudMs int64 `json:"cloudMs"`
}

type DomainDetectResponse struct {
	DetectedDomain        string         `json:"detectedDomain"`
	Confidence            float64        `json:"confidence"`
	SupportedDomains      []string       `json:"supportedDomains"`
	DomainKeywordsMatched map[string]int `json:"domainKeywordsMatched"`
}

type SearchHit struct {
	DocID   string  `json:"docId"`
	ChunkID string  `json:"chunkId"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

type SearchResponse struct {
	Query string      `json:"query"`
	Top   []SearchHit `json:"top"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
