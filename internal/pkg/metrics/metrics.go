package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areaselect",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "areaselect",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "areaselect",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Selection metrics
	SelectionActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areaselect",
		Subsystem: "selection",
		Name:      "actions_total",
		Help:      "Selection actions by type and outcome (applied, ignored, deferred, rejected)",
	}, []string{"action", "outcome"})

	SelectionConfirmations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areaselect",
		Subsystem: "selection",
		Name:      "confirmations_total",
		Help:      "Answered confirmation prompts by pending kind and decision",
	}, []string{"kind", "decision"})

	SelectionEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areaselect",
		Subsystem: "selection",
		Name:      "evaluations_total",
		Help:      "Analysis requests by selection source and result",
	}, []string{"source", "result"})

	SelectionAreaKm2 = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "areaselect",
		Subsystem: "selection",
		Name:      "evaluated_area_km2",
		Help:      "Area of evaluated selections in square kilometers",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "areaselect",
		Subsystem: "session",
		Name:      "active",
		Help:      "Sessions held by the in-memory store",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "areaselect",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	StoreHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areaselect",
		Subsystem: "store",
		Name:      "hits_total",
		Help:      "Session lookups that found a snapshot",
	}, []string{"backend"})

	StoreMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areaselect",
		Subsystem: "store",
		Name:      "misses_total",
		Help:      "Session lookups for unknown or expired sessions",
	}, []string{"backend"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "areaselect",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "areaselect",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "areaselect",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// Route pattern keeps session IDs out of the label set.
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics copies pool gauges from a pgxpool.Stat without
// importing pgx here.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
