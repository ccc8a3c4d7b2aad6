package orchestrator

import (
	"time"

	"github.com/documind/documind/apimodels"
	"github.com/documind/documind/internal/analyzer"
	"github.com/documind/documind/internal/confidence"
	"github.com/documind/documind/internal/rag"
)

// Answer is one generated answer with its provenance. Immutable once created.
type Answer struct {
	Text    string
	Route   apimodels.Route
	Model   string
	Elapsed time.Duration
}

// Result is the final payload for one request. Callers always receive a
// structurally valid Result unless the query itself was invalid.
type Result struct {
	RequestID  string
	Profile    analyzer.QueryProfile
	Route      apimodels.Route
	Answer     Answer
	ContextMap rag.ContextMap
	Confidence confidence.Score

	// Degraded marks a result whose answer is an abstain because every
	// usable path failed, not because the model legitimately abstained.
	Degraded bool

	Timings apimodels.Timings
}

// escalationHop is a one-shot permit for the local-to-cloud fallback. Once
// fired it stays spent for the rest of the request, so the at-most-one
// escalation invariant holds structurally even if the routing logic grows
// new branches.
type escalationHop struct {
	spent bool
}

func (h *escalationHop) fire() bool {
	if h.spent {
		return false
	}
	h.spent = true
	return true
}
