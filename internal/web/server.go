// Package web exposes the tracker's operation surface as a JSON HTTP API for
// callers that prefer a long-running service over the one-shot CLI. All
// mutations funnel through the record store, which serializes them.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/service"
)

type Server struct {
	tracker *service.Tracker
	router  chi.Router
	logger  *slog.Logger
}

func NewServer(tracker *service.Tracker, logger *slog.Logger) *Server {
	s := &Server{tracker: tracker, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", s.handleHealth)
	r.Route("/medicines", func(r chi.Router) {
		r.Post("/", s.handleAdd)
		r.Get("/", s.handleList)
		r.Get("/expiring", s.handleExpiring)
		r.Get("/expired", s.handleExpired)
		r.Get("/search", s.handleSearch)
		r.Get("/export", s.handleExport)
		r.Delete("/{name}", s.handleRemove)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
