package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// SessionsStarted - количество начатых прохождений
	SessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "play_sessions_started_total",
		Help: "Total number of started play sessions",
	})

	// SessionsFinished - количество завершённых прохождений по уровню результата
	SessionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "play_sessions_finished_total",
			Help: "Total number of finished play sessions",
		},
		[]string{"tier"},
	)

	// SessionRejected - отклонённые операции прохождения по виду ошибки
	SessionRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "play_session_rejected_operations_total",
			Help: "Total number of rejected play session operations",
		},
		[]string{"operation", "reason"},
	)

	// WSConnections - открытые WebSocket соединения прохождений
	WSConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "play_ws_connections",
		Help: "Number of open play WebSocket connections",
	})
)

// Init регистрирует метрики в реестре по умолчанию
func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		SessionsStarted,
		SessionsFinished,
		SessionRejected,
		WSConnections,
	)
}

// MetricsMiddleware учитывает количество и длительность HTTP запросов
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

// PrometheusHandler отдаёт метрики в формате Prometheus
func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
