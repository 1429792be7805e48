// Package api exposes the hiring pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	service "github.com/okian/hireflow/internal/app"
	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/internal/domain/report"
	"github.com/okian/hireflow/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Track(ctx context.Context, c model.Candidate) (model.Candidate, error)
	Candidate(ctx context.Context, id string) (model.Candidate, error)
	Check(ctx context.Context, ev model.Event, req service.ActionRequest) error
	Dispatch(ctx context.Context, op model.Operator, ev model.Event, req service.ActionRequest) (model.Candidate, error)
	Evaluate(ctx context.Context, op model.Operator, candidateID, jobID string, ev model.Evaluation) error
	Profile(ctx context.Context, candidateID string) (model.Profile, error)
	Score(ctx context.Context, jobID, candidateID string) (model.Application, error)
	Funnel(ctx context.Context, jobID string, scores bool) (report.Funnel, error)
	Stats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the pipeline API.
type Server struct {
	deps    Dependencies
	stream  http.Handler
	docs    func(chi.Router)
	origins []string
	timeout time.Duration
	now     func() time.Time
	log     logger.Logger
	router  *chi.Mux
}

// NewServer creates the API server and its router.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:    deps,
		origins: []string{"*"},
		timeout: 60 * time.Second,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", headerEmployeeID, headerCompanyDomain},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", MetricsMiddleware(handleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.handleStats, "stats"))
	if s.docs != nil {
		s.docs(r)
	}
	if s.stream != nil {
		// Long-lived; kept outside the request timeout.
		r.Get("/api/v1/stream", s.stream.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))

		r.Route("/candidates/{id}", func(r chi.Router) {
			r.Put("/", MetricsMiddleware(s.handleTrack, "track"))
			r.Get("/", MetricsMiddleware(s.handleCandidate, "candidate"))
			r.Get("/transitions/{event}", MetricsMiddleware(s.handleCheck, "transition_check"))
			r.Post("/actions/{action}", MetricsMiddleware(s.handleAction, "action"))
			r.Post("/evaluation", MetricsMiddleware(s.handleEvaluation, "evaluation"))
			r.Get("/profile", MetricsMiddleware(s.handleProfile, "profile"))
		})

		r.Route("/jobs/{job}", func(r chi.Router) {
			r.Get("/candidates/{id}/score", MetricsMiddleware(s.handleScore, "score"))
			r.Get("/funnel", MetricsMiddleware(s.handleFunnel, "funnel"))
			r.Get("/funnel.xlsx", MetricsMiddleware(s.handleFunnelExport, "funnel_export"))
		})
	})

	s.router = r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err's kind to a status and an operator-facing message.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	writeJSON(w, status, errorResponse{Code: code, Message: model.Message(err)})
}

func statusOf(err error) (int, string) {
	switch model.KindOf(err) {
	case model.ErrMissingIdentifier:
		return http.StatusBadRequest, "missing_identifier"
	case model.ErrInvalidInput:
		return http.StatusBadRequest, "invalid_input"
	case model.ErrInvalidTransition:
		return http.StatusConflict, "invalid_transition"
	case model.ErrBusy:
		return http.StatusTooManyRequests, "busy"
	case model.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case model.ErrRemoteFailure:
		return http.StatusBadGateway, "remote_failure"
	case model.ErrPartialDataUnavailable:
		return http.StatusBadGateway, "partial_data_unavailable"
	}
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return model.WrapKind("decode request", model.ErrInvalidInput, err)
	}
	return nil
}

const maxBodyBytes = 1 << 20

// partial reports whether err only says some inputs were unavailable, in
// which case the handler still answers with what it has.
func partial(err error) bool {
	return err != nil && model.KindOf(err) == model.ErrPartialDataUnavailable
}
