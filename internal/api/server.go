// Package api serves persisted run results over HTTP
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"featrank/domain/core"
	"featrank/internal"
	"featrank/internal/errors"
	"featrank/internal/report"
	"featrank/models"
	"featrank/ports"
)

// Server exposes run results over a chi router
type Server struct {
	router *chi.Mux
	repo   ports.ResultsRepository
	logger *internal.Logger
}

// NewServer creates the results API server
func NewServer(repo ports.ResultsRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router: chi.NewRouter(),
		repo:   repo,
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Get("/api/runs", s.handleListRuns)
	s.router.Get("/api/runs/latest", s.handleLatestRun)
	s.router.Get("/api/runs/{id}", s.handleGetRun)
	s.router.Get("/api/runs/{id}/consensus", s.handleConsensus)
	s.router.Get("/api/runs/{id}/stability", s.handleStability)
	s.router.Get("/api/runs/{id}/agreement", s.handleAgreement)
	s.router.Get("/runs/{id}/report", s.handleReport)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	manifests, err := s.repo.ListManifests(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs: %v", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	s.respondJSON(w, manifests)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.repo.LatestRun(r.Context())
	if err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, result)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.loadRun(w, r)
	if err != nil {
		return
	}
	s.respondJSON(w, result)
}

func (s *Server) handleConsensus(w http.ResponseWriter, r *http.Request) {
	result, err := s.loadRun(w, r)
	if err != nil {
		return
	}
	s.respondJSON(w, result.Consensus)
}

func (s *Server) handleStability(w http.ResponseWriter, r *http.Request) {
	result, err := s.loadRun(w, r)
	if err != nil {
		return
	}
	s.respondJSON(w, map[string]any{
		"stability": result.Stability,
		"avg_ranks": result.AvgRanks,
	})
}

func (s *Server) handleAgreement(w http.ResponseWriter, r *http.Request) {
	result, err := s.loadRun(w, r)
	if err != nil {
		return
	}
	s.respondJSON(w, map[string]any{
		"agreement":    result.Agreement,
		"method_ranks": result.MethodRanks,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.loadRun(w, r)
	if err != nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(report.HTML(result))
}

// loadRun resolves the {id} parameter and fetches the run, writing the
// error response itself when anything fails
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*models.RunResult, error) {
	runID, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid run ID", http.StatusBadRequest)
		return nil, err
	}
	result, err := s.repo.GetRun(r.Context(), runID.String())
	if err != nil {
		s.respondRepoError(w, err)
		return nil, err
	}
	return result, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response: %v", err)
	}
}

func (s *Server) respondRepoError(w http.ResponseWriter, err error) {
	if core.IsNotFoundError(err) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	s.logger.Error("load run [%s]: %v", errors.GetCode(err), err)
	http.Error(w, "Failed to load run", http.StatusInternalServerError)
}
