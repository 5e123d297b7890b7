package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coriolisfix/gatefix/internal/logger"
	"github.com/coriolisfix/gatefix/pkg/metrics"
)

// NewRouter builds the chi router for h's admin REST surface, grounded on
// the teacher's pkg/api/router.go middleware stack.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.Liveness)
	r.Get("/health/ready", h.Readiness)
	if metricsHandler := metrics.Handler(); metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Get("/replies/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.GetReply(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/libraries", h.Libraries)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
