package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesEnqueuedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sms_relay",
			Name:      "messages_enqueued_total",
			Help:      "Total messages accepted into the buffer.",
		},
	)

	entriesProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_relay",
			Name:      "buffer_entries_processed_total",
			Help:      "Total buffer entries processed, by outcome.",
		},
		[]string{"outcome"}, // delivered, rejected, unreachable, no_configuration, ...
	)

	failoverCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_relay",
			Name:      "failover_sends_total",
			Help:      "Total failover sends by final result.",
		},
		[]string{"result"}, // primary_delivered, backup_delivered, both_failed
	)

	passesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_relay",
			Name:      "buffer_passes_total",
			Help:      "Total processing passes by how they ended.",
		},
		[]string{"result"}, // drained, stopped, error
	)

	passDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sms_relay",
			Name:      "buffer_pass_duration_seconds",
			Help:      "Duration of processing passes.",
			Buckets:   []float64{0.01, 0.1, 1, 10, 60, 300, 900, 3600},
		},
	)

	bufferSizeGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sms_relay",
			Name:      "buffer_entries",
			Help:      "Number of entries in the last buffer snapshot.",
		},
	)
)
