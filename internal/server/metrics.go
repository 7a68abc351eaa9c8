package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screentel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Analysis metrics
	analysisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentel_analysis_requests_total",
			Help: "Total number of screenshot analysis requests",
		},
		[]string{"transport", "status"}, // transport: http, websocket
	)

	analysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screentel_analysis_duration_seconds",
			Help:    "Screenshot analysis duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50},
		},
		[]string{"transport"},
	)

	activeOperatorTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentel_active_operator_total",
			Help: "Number of analyses per detected active operator",
		},
		[]string{"operator"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentel_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"scope"}, // scope: minute, hour, upload_bytes
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screentel_upload_size_bytes",
			Help:    "Size of uploaded screenshots in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 4 * 1024 * 1024, 16 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "screentel_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentel_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
