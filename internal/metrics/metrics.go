package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal         prometheus.CounterVec
	CacheMissesTotal       prometheus.CounterVec
	CacheOperationsTotal   prometheus.CounterVec
	CacheOperationDuration prometheus.HistogramVec

	// Database metrics
	DatabaseQueryDuration prometheus.HistogramVec
	DatabaseQueriesTotal  prometheus.CounterVec

	// Messaging metrics
	MessagesSentTotal   prometheus.CounterVec
	FeedAssemblyTime    prometheus.HistogramVec
	VisitsTrackedTotal  prometheus.CounterVec
	UnreadQueryDuration prometheus.HistogramVec
	AccessDeniedTotal   prometheus.CounterVec

	// Realtime push metrics
	EventsPublishedTotal prometheus.CounterVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			// HTTP metrics
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			// Cache metrics
			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			CacheOperationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_operations_total",
					Help: "Total number of cache operations",
				},
				[]string{"operation", "cache_name"},
			),
			CacheOperationDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "cache_operation_duration_seconds",
					Help:    "Cache operation latency in seconds",
					Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
				},
				[]string{"operation", "cache_name"},
			),

			// Database metrics
			DatabaseQueryDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "database_query_duration_seconds",
					Help:    "Database query latency in seconds",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"query_type", "table"},
			),
			DatabaseQueriesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "database_queries_total",
					Help: "Total number of database queries",
				},
				[]string{"query_type", "table", "status"},
			),

			// Messaging metrics
			MessagesSentTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_messages_sent_total",
					Help: "Total number of messages sent",
				},
				[]string{"message_type"},
			),
			FeedAssemblyTime: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "chat_feed_assembly_duration_seconds",
					Help:    "Time to assemble a channel feed in seconds",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
				},
				[]string{"channel_type"},
			),
			VisitsTrackedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_visits_tracked_total",
					Help: "Total number of channel visits recorded",
				},
				[]string{"channel_type"},
			),
			UnreadQueryDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "chat_unread_query_duration_seconds",
					Help:    "Time to compute the unread summary in seconds",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
				},
				[]string{},
			),
			AccessDeniedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_access_denied_total",
					Help: "Total number of channel access denials",
				},
				[]string{"channel_type"},
			),

			// Realtime push metrics
			EventsPublishedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "realtime_events_published_total",
					Help: "Total number of realtime events published to users",
				},
				[]string{"event"},
			),

			// Error metrics
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
