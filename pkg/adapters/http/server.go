// Package http exposes the assistant over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

// Asker is the assistant surface the API needs.
type Asker interface {
	Ask(ctx context.Context, query string) (*espalier.Result, error)
	History() []domain.InteractionRecord
	ClearHistory()
}

// Server routes API requests to an assistant.
type Server struct {
	assistant Asker
	logger    *slog.Logger
}

// NewHandler builds the HTTP handler. gatherer may be nil to omit /metrics.
func NewHandler(assistant Asker, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	s := &Server{assistant: assistant, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.query)
		r.Get("/history", s.history)
		r.Delete("/history", s.clearHistory)
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var body queryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("query: invalid request body", "error", err)
		return
	}
	if body.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	res, err := s.assistant.Ask(r.Context(), body.Query)
	if err != nil {
		s.logger.Error("query failed", "error", err)
		writeJSON(w, http.StatusBadGateway, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) history(w http.ResponseWriter, _ *http.Request) {
	records := s.assistant.History()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(records),
		"interactions": records,
	})
}

func (s *Server) clearHistory(w http.ResponseWriter, _ *http.Request) {
	s.assistant.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}
