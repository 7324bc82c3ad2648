package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campus_chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Realtime metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_chat_ws_connections",
			Help: "Open chat WebSocket connections",
		},
	)

	RoomKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_chat_room_keys",
			Help: "Room keys with at least one live connection",
		},
	)

	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_chat_frames_total",
			Help: "Client frames processed",
		},
		[]string{"op", "result"}, // result: "ok", "dropped", "error"
	)

	Deliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campus_chat_deliveries_total",
			Help: "Frames queued to live connections",
		},
	)

	DroppedDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campus_chat_dropped_deliveries_total",
			Help: "Deliveries dropped because the connection was closed or its queue was full",
		},
	)

	GuardRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_chat_guard_rejections_total",
			Help: "Connection attempts rejected before admission",
		},
		[]string{"reason"},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_chat_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"scope"}, // "rest" or "ws"
	)
)
