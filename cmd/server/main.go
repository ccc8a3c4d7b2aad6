package main

import (
	"log"
	"log/slog"

	"github.com/documind/documind/internal/analyzer"
	"github.com/documind/documind/internal/backend"
	"github.com/documind/documind/internal/config"
	"github.com/documind/documind/internal/confidence"
	"github.com/documind/documind/internal/llm"
	"github.com/documind/documind/internal/orchestrator"
	"github.com/documind/documind/internal/rag"
	"github.com/documind/documind/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	heuristics, err := config.LoadHeuristics(cfg.HeuristicsFile)
	if err != nil {
		log.Fatalf("failed to load heuristics: %v", err)
	}

	ollama, err := backend.NewOllama(cfg.Ollama)
	if err != nil {
		log.Fatalf("failed to create ollama client: %v", err)
	}

	qdrant, err := backend.NewQdrant(cfg.Qdrant)
	if err != nil {
		log.Fatalf("failed to create qdrant client: %v", err)
	}

	reranker, err := backend.NewReranker(cfg.Rerank)
	if err != nil {
		log.Fatalf("failed to create reranker client: %v", err)
	}

	var cloud llm.Provider
	if cfg.Cloud.APIKey != "" {
		provider, err := llm.NewOpenAI(&cfg.Cloud)
		if err != nil {
			log.Fatalf("failed to create cloud provider: %v", err)
		}
		cloud = provider
	} else {
		slog.Warn("no cloud API key configured, running local-only")
	}

	an := analyzer.New(heuristics)
	scorer := confidence.NewScorer(heuristics)
	pipeline := rag.New(ollama, qdrant, reranker, ollama, cfg.Retrieval)
	orch := orchestrator.New(an, pipeline, cloud, scorer, cfg.Routing)

	srv := server.New(*cfg, orch, an, pipeline)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
