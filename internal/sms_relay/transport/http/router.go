package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the relay HTTP API: relay routes plus /health and /metrics.
func NewRouter(handler *RelayHandler, serviceName string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(RequestMetrics(serviceName))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": serviceName + " is healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	handler.RegisterRoutes(r)

	logger.Debug("HTTP routes registered", "service", serviceName)
	return r
}
