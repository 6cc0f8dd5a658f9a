// Package chi is the thin HTTP shim over the retrieval pipeline: request
// validation, routing, and error-to-status mapping. No retrieval logic
// lives here.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/finbud-cloud/retriever/internal/domain"
	"github.com/finbud-cloud/retriever/internal/logger"
	"github.com/finbud-cloud/retriever/internal/usecase/retrieval"

	healthuc "github.com/finbud-cloud/retriever/internal/usecase/health"
)

// OrchestratorFactory builds a fresh pipeline orchestrator for one query.
type OrchestratorFactory func(query string) *retrieval.Orchestrator

// Defaults are the parameter values applied when a request omits them.
type Defaults struct {
	K         int
	ExpandToN int
	KeepTopK  int
}

// Server handles the retrieval API endpoints.
type Server struct {
	newOrchestrator OrchestratorFactory
	health          *healthuc.Service
	defaults        Defaults
	logger          *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	factory OrchestratorFactory,
	health *healthuc.Service,
	defaults Defaults,
	logger *zap.Logger,
) *Server {
	return &Server{
		newOrchestrator: factory,
		health:          health,
		defaults:        defaults,
		logger:          logger,
	}
}

// Routes mounts all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/retrieve", s.Retrieve)
	r.Post("/api/v1/rerank", s.Rerank)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// --- Request / response DTOs ---

type retrieveRequest struct {
	Query          string            `json:"query"`
	K              *int              `json:"k,omitempty"`
	ExpandToN      *int              `json:"expand_to_n,omitempty"`
	CollectionType *string           `json:"collection_type,omitempty"`
	Filters        map[string]string `json:"filters,omitempty"`
}

type retrieveResponse struct {
	Query string             `json:"query"`
	Hits  []domain.SearchHit `json:"hits"`
}

type rerankRequest struct {
	Query    string             `json:"query"`
	Hits     []domain.SearchHit `json:"hits"`
	KeepTopK *int               `json:"keep_top_k,omitempty"`
}

type rerankResponse struct {
	Passages []string `json:"passages"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeMissingContent   = "missing_content"
	codeInternalError    = "internal_error"
)

// Retrieve handles POST /api/v1/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Query is required")
		return
	}

	k := s.defaults.K
	if req.K != nil {
		k = *req.K
	}
	expandToN := s.defaults.ExpandToN
	if req.ExpandToN != nil {
		expandToN = *req.ExpandToN
	}
	if k <= 0 || expandToN <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"k and expand_to_n must be positive")
		return
	}

	params := retrieval.TopKParams{
		K:         k,
		ExpandToN: expandToN,
		Filters:   req.Filters,
	}
	if req.CollectionType != nil {
		ct, ok := domain.ParseCollectionType(*req.CollectionType)
		if ok {
			params.CollectionType = &ct
		} else {
			// Unknown collection type searches everything rather than nothing.
			logger.FromContext(r.Context()).Warn("Unknown collection type, searching unfiltered",
				zap.String("collection_type", *req.CollectionType))
		}
	}

	o := s.newOrchestrator(req.Query)
	hits := o.RetrieveTopK(r.Context(), params)
	if hits == nil {
		hits = []domain.SearchHit{}
	}

	writeJSON(w, http.StatusOK, retrieveResponse{
		Query: o.Query(),
		Hits:  hits,
	})
}

// Rerank handles POST /api/v1/rerank.
func (s *Server) Rerank(w http.ResponseWriter, r *http.Request) {
	var req rerankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Query is required")
		return
	}

	keepTopK := s.defaults.KeepTopK
	if req.KeepTopK != nil {
		keepTopK = *req.KeepTopK
	}
	if keepTopK <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "keep_top_k must be positive")
		return
	}

	o := s.newOrchestrator(req.Query)
	passages, err := o.Rerank(r.Context(), req.Hits, keepTopK)
	if err != nil {
		if errors.Is(err, domain.ErrMissingContent) {
			writeError(w, http.StatusBadRequest, codeMissingContent, err.Error())
			return
		}
		s.logger.Error("Rerank failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	if passages == nil {
		passages = []string{}
	}

	writeJSON(w, http.StatusOK, rerankResponse{Passages: passages})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
