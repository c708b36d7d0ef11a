// Package server provides the kiosk's small HTTP surface: a health check
// and two read endpoints an admin dashboard or reporting tool can poll
// (SPEC_FULL §6). The kiosk itself never calls into this package — all
// scan handling happens on the EventDispatcher loop — this is purely an
// out-of-band reporting API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/report"
	"github.com/randhum/timeclock/internal/store"
)

// Server wires the HTTP router.
type Server struct {
	router *chi.Mux
	log    zerolog.Logger
}

// New constructs a Server bound to the Store and report Engine.
func New(s *store.Store, reports *report.Engine, log zerolog.Logger) *Server {
	log = log.With().Str("component", "http_server").Logger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	h := &handlers{store: s, reports: reports, log: log}
	r.Get("/healthz", h.healthz)
	r.Get("/api/reports/{employeeID}", h.report)
	r.Get("/api/export/raw-entries.csv", h.exportRawEntries)

	return &Server{router: r, log: log}
}

// ServeHTTP lets Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}
