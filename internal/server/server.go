// Package server exposes the sked REST API: schedule CRUD, generation,
// export inspection, comparison, and health.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/sked/internal/config"
	"github.com/me/sked/internal/generate"
	"github.com/me/sked/internal/store"
	"github.com/me/sked/pkg/model"
	"github.com/me/sked/pkg/optimizer"
)

// Generator runs one schedule generation attempt.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) *model.GenerationOutcome
}

// PayloadBuilder builds the optimizer export payload for inspection.
type PayloadBuilder interface {
	Build(ctx context.Context, scheduleID string) (*optimizer.ExportPayload, error)
}

// Validator reports a schedule's current conflicts, used by compare.
type Validator interface {
	Validate(ctx context.Context, scheduleID string) (*model.ValidationOutcome, error)
}

// HealthChecker probes the optimizer for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server is the sked REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	store     store.Store
	generator Generator
	mapper    PayloadBuilder
	validator Validator
	optimizer HealthChecker // optional; nil when generation is disabled
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithOptimizerHealth sets the optimizer health checker reported by
// /health.
func WithOptimizerHealth(hc HealthChecker) Option {
	return func(s *Server) {
		s.optimizer = hc
	}
}

// New creates a Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, gen Generator, mapper PayloadBuilder, validator Validator, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		generator: gen,
		mapper:    mapper,
		validator: validator,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", s.handleListSchedules)
			r.Post("/", s.handleCreateSchedule)
			r.Get("/compare", s.handleCompareSchedules)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSchedule)
				r.Post("/generate", s.handleGenerateSchedule)
				r.Get("/export", s.handleExportSchedule)
			})
		})
	})
}
