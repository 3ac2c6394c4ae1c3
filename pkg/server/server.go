// Package server exposes the chart pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                      build info
//	GET  /v1/locations?q=              geocode a place
//	POST /v1/charts/render?format=     render a chart, returns the artifact
//	POST /v1/odds                      Sun sign odds for a day
//	GET  /v1/renders                   recent renders
//	GET  /v1/renders/{id}              one render record
//	GET  /v1/renders/{id}/artifact     render a stored record again
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/natalchart/pkg/pipeline"
	"github.com/matzehuels/natalchart/pkg/store"
)

// Config holds server configuration.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *log.Logger
	Runner       *pipeline.Runner
	Store        store.Store
}

// Server is the HTTP API.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    *log.Logger
	runner *pipeline.Runner
	store  store.Store
}

// New creates a server. A nil Store keeps history in memory.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Logger.WithPrefix("server"),
		runner: cfg.Runner,
		store:  cfg.Store,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logging)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/locations", s.handleLocate)
		r.Post("/charts/render", s.handleRender)
		r.Post("/odds", s.handleOdds)

		r.Route("/renders", func(r chi.Router) {
			r.Get("/", s.handleListRenders)
			r.Get("/{id}", s.handleGetRender)
			r.Get("/{id}/artifact", s.handleRerender)
		})
	})
}

// Handler returns the routed handler, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
