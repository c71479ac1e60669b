package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Business metrics
	ActiveSessionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_parking_sessions_total",
			Help: "Current number of active parking sessions",
		},
		[]string{"service"},
	)

	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_sessions_total",
			Help: "Total number of parking sessions by lifecycle event",
		},
		[]string{"service", "event"},
	)

	PaymentsSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_settled_total",
			Help: "Total number of settled session payments",
		},
		[]string{"service"},
	)

	PaymentAmountMinorUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_amount_minor_units_total",
			Help: "Sum of settled payment amounts in minor currency units",
		},
		[]string{"service", "kind"}, // kind: total | penalty
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"service", "operation", "status"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)
)

// RecordHTTPMetrics records the standard per-request counters and histogram.
func RecordHTTPMetrics(service, method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	HttpRequestsTotal.WithLabelValues(service, method, path, statusStr).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, statusStr).Observe(duration.Seconds())
}

// RecordDatabaseQuery records one database query outcome.
func RecordDatabaseQuery(service, operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DatabaseQueriesTotal.WithLabelValues(service, operation, status).Inc()
}

// RecordRabbitMQPublish records one publish attempt outcome.
func RecordRabbitMQPublish(service, routingKey string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RabbitMQMessagesPublished.WithLabelValues(service, routingKey, status).Inc()
}
