// Package api provides the HTTP API server and handlers for PagePace.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/store"
	"github.com/pagepace/pagepace-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     store.Store
	services  Services
	router    *chi.Mux
	api       huma.API
	validator *validation.Validator
	clk       clock.Clock
	logger    *slog.Logger
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(store store.Store, services Services, clk clock.Clock, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("PagePace API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s := &Server{
		store:     store,
		services:  services,
		router:    router,
		validator: validation.New(),
		clk:       clk,
		logger:    logger,
	}

	RegisterErrorHandler()
	s.setupMiddleware()
	s.api = humachi.New(router, humaConfig)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", userIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.identityMiddleware)
}

// setupRoutes configures all HTTP routes. The session lifecycle uses plain
// chi handlers; the shelf, stats, and reminder surfaces are typed huma
// operations.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartSession)
		r.Get("/active", s.handleGetActiveSession)
		r.Delete("/active", s.handleAbandonSession)
		r.Post("/active/pause", s.handlePauseSession)
		r.Post("/active/resume", s.handleResumeSession)
		r.Post("/active/finalize", s.handleFinalizeSession)
	})

	s.registerBookRoutes()
	s.registerStatsRoutes()
	s.registerReminderRoutes()
}
