package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_relay",
			Name:      "http_requests_total",
			Help:      "HTTP requests by service, route and status class.",
		},
		[]string{"service", "method", "route", "status_class"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sms_relay",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by service and route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"service", "method", "route"},
	)

	// sendRequestsTotal splits POST /send_sms into accepted, invalid and failed.
	sendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_relay",
			Name:      "send_requests_total",
			Help:      "POST /send_sms requests by result.",
		},
		[]string{"result"}, // accepted, invalid, failed
	)
)

// RequestMetrics records request count and latency under the matched chi
// route, labelled with service.
func RequestMetrics(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			httpRequestDurationSeconds.WithLabelValues(service, r.Method, route).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(service, r.Method, route, statusClass(ww.Status())).Inc()
		})
	}
}

// routePattern keeps label cardinality bounded: unmatched paths share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func statusClass(status int) string {
	if status == 0 {
		status = http.StatusOK
	}
	return strconv.Itoa(status/100) + "xx"
}
