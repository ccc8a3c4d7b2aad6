package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/documind/documind/apimodels"
	"github.com/documind/documind/internal/analyzer"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req apimodels.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	result, err := s.orch.Handle(r.Context(), req)
	if err != nil {
		if errors.Is(err, analyzer.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("ask request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := apimodels.AskResponse{
		RequestID:  result.RequestID,
		Route:      result.Route,
		Answer:     result.Answer.Text,
		ContextMap: make([]apimodels.ContextRef, 0, len(result.ContextMap)),
		Confidence: result.Confidence.Overall,
		Reasoning:  result.Confidence.Reasoning,
		Degraded:   result.Degraded,
		Timings:    result.Timings,
	}
	for _, item := range result.ContextMap {
		resp.ContextMap = append(resp.ContextMap, apimodels.ContextRef{
			Index:   item.Index,
			DocID:   item.DocID,
			ChunkID: item.ChunkID,
			Score:   item.Score,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req apimodels.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	profile, err := s.analyzer.Analyze(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleDomainDetect(w http.ResponseWriter, r *http.Request) {
	var req apimodels.DomainDetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	domain, conf, matched := s.analyzer.DetectDomain(req.Text)
	supported := make([]string, 0, len(matched))
	for name := range matched {
		supported = append(supported, name)
	}
	writeJSON(w, http.StatusOK, apimodels.DomainDetectResponse{
		DetectedDomain:        string(domain),
		Confidence:            conf,
		SupportedDomains:      supported,
		DomainKeywordsMatched: matched,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	k := 8
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = parsed
	}

	chunks, err := s.pipeline.Preview(r.Context(), query, k)
	if err != nil {
		slog.Error("search preview failed", "error", err)
		writeError(w, http.StatusBadGateway, "retrieval backends unavailable")
		return
	}

	resp := apimodels.SearchResponse{Query: query, Top: make([]apimodels.SearchHit, 0, k)}
	for i, c := range chunks {
		if i == k {
			break
		}
		preview := truncatePreview(c.Text, 160)
		resp.Top = append(resp.Top, apimodels.SearchHit{
			DocID:   c.DocID,
			ChunkID: c.ChunkID,
			Score:   c.Score,
			Preview: preview,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"info":   s.health,
	})
}

// truncatePreview cuts text to at most max bytes without splitting a
// multi-byte rune.
func truncatePreview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apimodels.ErrorResponse{Error: message})
}
