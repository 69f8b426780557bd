package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "igrejalab_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "module", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "igrejalab_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "module"},
	)

	OutboxEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "igrejalab_outbox_events_total",
			Help: "Outbox events processed by the relayer",
		},
		[]string{"event_type", "result"}, // "published", "failed"
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "igrejalab_notifications_created_total",
			Help: "Member notifications written",
		},
	)
)

// Middleware registra contador y latencia por módulo (primer segmento del path).
func Middleware(moduleOf func(path string) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		module := moduleOf(c.Request.URL.Path)
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, module, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, module).Observe(time.Since(start).Seconds())
	}
}

// Handler expone /metrics.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
