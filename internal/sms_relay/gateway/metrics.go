package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_relay",
			Name:      "gateway_attempts_total",
			Help:      "Total delivery attempts per gateway leg and outcome.",
		},
		[]string{"gateway", "outcome"},
	)

	gatewayRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sms_relay",
			Name:      "gateway_request_duration_seconds",
			Help:      "Duration of HTTP requests to SMS gateways.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"gateway"},
	)
)
