package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/internal/ports"
)

// Config holds server-specific configuration.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server serves the experiment endpoints over an ExperimentStore.
type Server struct {
	store    ports.ExperimentStore
	router   chi.Router
	cfg      Config
	registry *prometheus.Registry
	metrics  *httpMetrics
}

func NewServer(store ports.ExperimentStore, cfg Config) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		store:    store,
		router:   chi.NewRouter(),
		cfg:      cfg,
		registry: registry,
		metrics:  newHTTPMetrics(registry),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(s.metrics.middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/getter", func(r chi.Router) {
		r.Get("/projects", s.handleProjects)
		r.Get("/experiments", s.handleExperiments)
		r.Get("/experiment", s.handleExperiment)
	})
	r.Get("/notes", s.handleGetNotes)
	r.Post("/notes", s.handleSaveNotes)
	r.Post("/delete", s.handleDelete)
	r.Get("/download", s.handleDownload)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	log := logx.Ctx(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("experiment server listening", "addr", s.cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	log.Info("experiment server shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
