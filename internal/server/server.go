package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/documind/documind/internal/analyzer"
	"github.com/documind/documind/internal/config"
	"github.com/documind/documind/internal/orchestrator"
	"github.com/documind/documind/internal/rag"
)

type Server struct {
	cfg      config.ServerConfig
	router   *chi.Mux
	server   *http.Server
	orch     *orchestrator.Orchestrator
	analyzer *analyzer.Analyzer
	pipeline *rag.Pipeline
	health   HealthInfo
}

// HealthInfo is static deployment information reported by the health
// endpoint.
type HealthInfo struct {
	Collection string `json:"collection"`
	LocalModel string `json:"localModel"`
	CloudModel string `json:"cloudModel"`
	EmbedModel string `json:"embedModel"`
}

func New(cfg config.Config, orch *orchestrator.Orchestrator, an *analyzer.Analyzer, pipeline *rag.Pipeline) *Server {
	s := &Server{
		cfg:      cfg.Server,
		router:   chi.NewRouter(),
		orch:     orch,
		analyzer: an,
		pipeline: pipeline,
		health: HealthInfo{
			Collection: cfg.Qdrant.Collection,
			LocalModel: cfg.Ollama.Model,
			CloudModel: cfg.Cloud.Model,
			EmbedModel: cfg.Ollama.EmbedModel,
		},
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/domain/detect", s.handleDomainDetect)
		r.Get("/search", s.handleSearch)
		r.Get("/health", s.handleHealth)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Router exposes the configured router, mainly for handler tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(rw, r)

		slog.Info("HTTP request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func (s *Server) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("starting server", "address", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("starting shutdown", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}
	return nil
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}
