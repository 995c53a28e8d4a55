package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workspace_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Realtime metrics
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workspace_ws_connected_clients",
			Help: "Currently connected websocket clients",
		},
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_ws_commands_total",
			Help: "Total websocket commands handled",
		},
		[]string{"command", "outcome"}, // outcome: "ok" or "error"
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workspace_ws_command_duration_seconds",
			Help:    "Websocket command handling duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"command"},
	)

	DroppedEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workspace_ws_dropped_events_total",
			Help: "Outbound events dropped because a client send buffer was full",
		},
	)

	ActiveFileEditors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workspace_presence_entries",
			Help: "Number of (file, user) presence entries",
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
