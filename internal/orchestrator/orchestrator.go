package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/apimodels"
	"github.com/documind/documind/internal/analyzer"
	"github.com/documind/documind/internal/config"
	"github.com/documind/documind/internal/confidence"
	"github.com/documind/documind/internal/llm"
	"github.com/documind/documind/internal/rag"
)

const cloudSystemPrompt = "You are DocuMind, a document intelligence assistant. " +
	"Answer the user's question directly and concisely. " +
	"If you are not certain, say so rather than guessing."

// Orchestrator runs one request through analyze -> route -> generate ->
// score, with at most one escalation hop from local to cloud. The two paths
// never run concurrently for the same request: the escalation decision
// depends on the scored local result.
type Orchestrator struct {
	analyzer *analyzer.Analyzer
	local    *rag.Pipeline
	cloud    llm.Provider // nil when no cloud provider is configured
	scorer   *confidence.Scorer
	cfg      config.RoutingConfig
}

func New(an *analyzer.Analyzer, local *rag.Pipeline, cloud llm.Provider, scorer *confidence.Scorer, cfg config.RoutingConfig) *Orchestrator {
	return &Orchestrator{
		analyzer: an,
		local:    local,
		cloud:    cloud,
		scorer:   scorer,
		cfg:      cfg,
	}
}

// Handle executes one query end to end. The only error it returns is
// analyzer.ErrInvalidQuery, raised before any backend call; every backend
// failure is converted into a degraded Result instead.
func (o *Orchestrator) Handle(ctx context.Context, req apimodels.AskRequest) (*Result, error) {
	profile, err := o.analyzer.Analyze(req.Query)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RequestID: uuid.NewString(),
		Profile:   profile,
	}
	slog.Info("query analyzed",
		"requestId", res.RequestID,
		"complexity", profile.Complexity,
		"domain", profile.Domain,
		"intent", profile.Intent,
		"recommendedRoute", profile.RecommendedRoute,
	)

	hop := &escalationHop{}
	switch o.effectiveRoute(profile) {
	case apimodels.RouteCloud:
		if !o.attemptCloud(ctx, req, res) {
			// Cloud-first and cloud is down: no further transition is
			// defined, so degrade rather than raise.
			o.degrade(req.Query, apimodels.RouteCloud, res)
		}
	case apimodels.RouteLocal:
		o.runLocalThenMaybeEscalate(ctx, req, res, hop)
	}
	return res, nil
}

func (o *Orchestrator) runLocalThenMaybeEscalate(ctx context.Context, req apimodels.AskRequest, res *Result, hop *escalationHop) {
	ok := o.attemptLocal(ctx, req.Query, res)
	if !ok {
		// Local generator down. Escalate if the policy allows, otherwise
		// return the degraded abstain.
		if o.cloudAllowed() && hop.fire() && o.attemptCloud(ctx, req, res) {
			return
		}
		o.degrade(req.Query, apimodels.RouteLocal, res)
		return
	}

	if res.Confidence.ShouldEscalate && o.cloudAllowed() && hop.fire() {
		slog.Info("escalating to cloud",
			"requestId", res.RequestID,
			"localConfidence", res.Confidence.Overall,
			"reasoning", res.Confidence.Reasoning,
		)
		if !o.attemptCloud(ctx, req, res) {
			// Keep the scored local answer when the escalation target is
			// unreachable.
			slog.Warn("escalation failed, keeping local answer", "requestId", res.RequestID)
		}
	}
}

// attemptLocal runs the RAG path and scores the answer. Returns false only
// when the local generator itself is unavailable; retrieval trouble has
// already degraded to an abstain inside the pipeline.
func (o *Orchestrator) attemptLocal(ctx context.Context, query string, res *Result) bool {
	pathCtx, cancel := context.WithTimeout(ctx, o.cfg.LocalTimeout)
	defer cancel()

	start := time.Now()
	text, cmap, err := o.local.Run(pathCtx, query)
	elapsed := time.Since(start)
	res.Timings.LocalMs = elapsed.Milliseconds()
	if err != nil {
		slog.Warn("local path unavailable", "requestId", res.RequestID, "error", err)
		return false
	}

	res.Route = apimodels.RouteLocal
	res.Answer = Answer{Text: text, Route: apimodels.RouteLocal, Elapsed: elapsed}
	res.ContextMap = cmap
	res.Confidence = o.scorer.Evaluate(query, text, cmap, apimodels.RouteLocal)
	return true
}

// attemptCloud calls the cloud generator with the raw query (no local
// context) and scores the answer with the cloud weighting.
func (o *Orchestrator) attemptCloud(ctx context.Context, req apimodels.AskRequest, res *Result) bool {
	if o.cloud == nil {
		return false
	}
	pathCtx, cancel := context.WithTimeout(ctx, o.cfg.CloudTimeout)
	defer cancel()

	start := time.Now()
	resp, err := o.cloud.Generate(pathCtx, cloudSystemPrompt, req.Query, func(opts *llm.Options) {
		if req.Options.Model != "" {
			opts.Model = req.Options.Model
		}
		if req.Options.MaxTokens != 0 {
			opts.MaxTokens = req.Options.MaxTokens
		}
	})
	elapsed := time.Since(start)
	res.Timings.CloudMs = elapsed.Milliseconds()
	if err != nil {
		slog.Warn("cloud path unavailable", "requestId", res.RequestID, "error", err)
		return false
	}

	res.Route = apimodels.RouteCloud
	res.Answer = Answer{Text: resp.Content, Route: apimodels.RouteCloud, Model: resp.Model, Elapsed: elapsed}
	res.ContextMap = rag.ContextMap{}
	res.Confidence = o.scorer.Evaluate(req.Query, resp.Content, nil, apimodels.RouteCloud)
	res.Degraded = false
	return true
}

// degrade fills the result with an abstain answer so the caller still gets a
// structurally valid response when every usable path failed.
func (o *Orchestrator) degrade(query string, route apimodels.Route, res *Result) {
	res.Route = route
	res.Answer = Answer{Text: rag.AbstainAnswer, Route: route}
	res.ContextMap = rag.ContextMap{}
	res.Confidence = o.scorer.Evaluate(query, rag.AbstainAnswer, nil, route)
	res.Degraded = true
}

func (o *Orchestrator) cloudAllowed() bool {
	return !o.cfg.LocalOnly && o.cloud != nil
}

// effectiveRoute applies policy flags on top of the analyzer's advisory
// recommendation.
func (o *Orchestrator) effectiveRoute(profile analyzer.QueryProfile) apimodels.Route {
	if o.cfg.LocalOnly || o.cloud == nil {
		return apimodels.RouteLocal
	}
	if !o.cfg.LocalFirst {
		return apimodels.RouteCloud
	}
	return profile.RecommendedRoute
}
