// Package chi exposes research runs over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/logger"
	healthuc "github.com/zkaiera/last30days-skill/internal/usecase/health"
	"github.com/zkaiera/last30days-skill/internal/usecase/pipeline"
	"github.com/zkaiera/last30days-skill/internal/usecase/report"
)

// maxRequestBody bounds research request bodies.
const maxRequestBody = 64 << 10

type runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ResearchRequest is the body of POST /v1/research.
type ResearchRequest struct {
	Topic      string `json:"topic"`
	Sources    string `json:"sources,omitempty"`
	Days       int    `json:"days,omitempty"`
	Depth      string `json:"depth,omitempty"` // quick, default, deep
	IncludeWeb bool   `json:"include_web,omitempty"`
	Mock       bool   `json:"mock,omitempty"`
}

// ResearchResponse is the body of a successful research run.
type ResearchResponse struct {
	Report      report.Report `json:"report"`
	Days        int           `json:"days"`
	MissingKeys string        `json:"missing_keys"`
	Note        string        `json:"note,omitempty"`
	XBackend    string        `json:"x_backend,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server serves the research API.
type Server struct {
	runner runner
	health healthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(runner runner, health healthChecker, logger *zap.Logger) *Server {
	return &Server{runner: runner, health: health, logger: logger}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/research", s.Research)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Research handles POST /v1/research.
func (s *Server) Research(w http.ResponseWriter, r *http.Request) {
	var req ResearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.runner.Run(r.Context(), pipeline.Request{
		Topic:      req.Topic,
		Sources:    req.Sources,
		Days:       req.Days,
		Depth:      domain.ParseDepth(req.Depth),
		IncludeWeb: req.IncludeWeb,
		Mock:       req.Mock,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ResearchResponse{
		Report:      out.Report,
		Days:        out.Days,
		MissingKeys: out.Missing,
		Note:        out.Note,
		XBackend:    string(out.XBackend),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())

	checks := make(map[string]string, len(rep.Checks))
	for k, v := range rep.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if rep.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(rep.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range requestErrorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.FromContext(r.Context()).Error("Research failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
