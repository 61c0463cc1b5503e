package handler

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the WhisperBox API. They are
// usable before InitMetrics registers them, which keeps handler tests free
// of registry state.
var Metrics = struct {
	ComplaintsCreated *prometheus.CounterVec
	LikesTotal        *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
}{
	ComplaintsCreated: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperbox_complaints_created_total",
			Help: "Complaints filed, by department.",
		},
		[]string{"department"},
	),
	LikesTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperbox_likes_total",
			Help: "Like attempts, by outcome (accepted, duplicate, not_found, count_failed, error).",
		},
		[]string{"outcome"},
	),
	Notifications: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperbox_notifications_total",
			Help: "New-complaint notifications, by outcome (sent, failed, disabled).",
		},
		[]string{"outcome"},
	),
	RequestDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whisperbox_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	),
	RequestsInFlight: prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "whisperbox_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	),
}

var registerOnce sync.Once

// InitMetrics registers all Prometheus metrics. Only the first call has an
// effect.
func InitMetrics(pool *pgxpool.Pool) {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			Metrics.ComplaintsCreated,
			Metrics.LikesTotal,
			Metrics.Notifications,
			Metrics.RequestDuration,
			Metrics.RequestsInFlight,
		)

		// DB pool gauges read live stats from pgxpool
		if pool != nil {
			prometheus.MustRegister(
				prometheus.NewGaugeFunc(
					prometheus.GaugeOpts{
						Name: "whisperbox_db_connection_pool_active",
						Help: "Number of active database connections.",
					},
					func() float64 { return float64(pool.Stat().AcquiredConns()) },
				),
				prometheus.NewGaugeFunc(
					prometheus.GaugeOpts{
						Name: "whisperbox_db_connection_pool_idle",
						Help: "Number of idle database connections.",
					},
					func() float64 { return float64(pool.Stat().IdleConns()) },
				),
			)
		}
	})
}

// RecordNotification is the notify.Dispatcher result hook.
func RecordNotification(outcome string) {
	Metrics.Notifications.WithLabelValues(outcome).Inc()
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings before c.Next(); Fiber
		// returns slices backed by the fasthttp buffer, which handlers may
		// reuse.
		endpoint := sanitizeEndpoint(string([]byte(c.Path())))
		method := string([]byte(c.Method()))

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	const (
		public = "/api/complaints/"
		admin  = "/api/admin/complaints/"
	)
	switch {
	case len(path) > len(public) && path[:len(public)] == public:
		if len(path) > 5 && path[len(path)-5:] == "/like" {
			return public + ":id/like"
		}
		return public + ":department"
	case len(path) > len(admin) && path[:len(admin)] == admin:
		if len(path) > 6 && path[len(path)-6:] == "/reply" {
			return admin + ":id/reply"
		}
		return admin + ":id/status"
	case len(path) > 9 && path[:9] == "/uploads/":
		return "/uploads/:file"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
