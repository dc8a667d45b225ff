package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "events_generated_total",
		Help: "Total number of synthesized order events",
	})

	EventsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_sent_total",
		Help: "Total number of order events dispatched to a sink",
	}, []string{"sink", "outcome"})

	EventSendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "event_send_latency_seconds",
		Help:    "Latency of remote event dispatch",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loadtest_active_workers",
		Help: "Number of load test workers currently running",
	})

	EventsReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_received_total",
		Help: "Total number of order events accepted by the receiver",
	}, []string{"transport", "status"})

	EventsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_rejected_total",
		Help: "Total number of order events rejected by the receiver",
	}, []string{"reason"})

	EventsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "events_ingested_total",
		Help: "Total number of order events persisted by the ingest worker",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
