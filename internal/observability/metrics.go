// Package observability holds application metrics and tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FeedAssemblyLatency records home feed and post detail assembly latency.
	FeedAssemblyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_feed_assembly_latency_seconds",
		Help:    "Feed assembly latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})

	// ImageUploads counts featured image uploads by outcome
	// (saved, rejected_extension, write_failed).
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_image_uploads_total",
		Help: "Total featured image upload attempts by outcome",
	}, []string{"outcome"})

	// ActiveWebSockets is the gauge of active notification connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quill_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
