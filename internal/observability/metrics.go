package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aray_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aray_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// NotificationsEmitted counts stored notifications by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aray_notifications_emitted_total",
		Help: "Total number of notifications stored",
	}, []string{"type"})

	// NotificationsFailed counts notifications that could not be stored.
	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aray_notifications_failed_total",
		Help: "Total number of notifications dropped after a storage error",
	}, []string{"type"})

	// RateLimitRejections counts requests refused by the write limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aray_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"backend"})

	// RedisErrors counts Redis failures of the rate limiter.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aray_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})
)
