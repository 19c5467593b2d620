package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/analyzer"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/config"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/logging"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/metrics"
	"github.com/BaymaX2803/tweet-sentiment-analysis/web"
)

type Server struct {
	cfg      config.ServerConfig
	server   *http.Server
	router   *chi.Mux
	analyzer *analyzer.Analyzer
	metrics  *metrics.Metrics
	models   []string
}

// New wires the HTTP surface. The model catalog is copied so later changes
// to cfg cannot reach the running server.
func New(cfg config.Config, analyzer *analyzer.Analyzer) *Server {
	s := &Server{
		cfg:      cfg.Server,
		router:   chi.NewRouter(),
		analyzer: analyzer,
		models:   append([]string(nil), cfg.Catalog.Models...),
	}
	if cfg.Metrics.Enabled {
		s.metrics = metrics.New()
	}

	s.setupRoutes(cfg.Metrics.Path)

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes(metricsPath string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestContext)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Recoverer)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, detail("Not Found"))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, detail("Method Not Allowed"))
	})

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/models", s.handleModels)
	s.router.Post("/analyze", s.handleAnalyze)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, metricsPath, s.metrics.Handler())
	}

	// Interactive page. Only the root is mounted so other paths get the JSON 404.
	s.router.Get("/", web.Handler().ServeHTTP)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "address", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("Starting shutdown", "signal", sig)

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		slog.InfoContext(r.Context(), "HTTP request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// requestContext hands chi's request id to the logger through the context.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
