package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API and distribution flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal           *prometheus.CounterVec
	httpRequestDuration         *prometheus.HistogramVec
	distributionsProcessedTotal *prometheus.CounterVec
	tasksCreatedTotal           prometheus.Counter
	distributionFanout          prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "leadflow",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "leadflow",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		distributionsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "leadflow",
				Name:      "distributions_processed_total",
				Help:      "Total number of distribution passes that reached a terminal state.",
			},
			[]string{"status"},
		),
		tasksCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "leadflow",
				Name:      "tasks_created_total",
				Help:      "Total number of tasks persisted by distribution passes.",
			},
		),
		distributionFanout: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "leadflow",
				Name:      "distribution_fanout",
				Help:      "Effective agent count per distribution pass.",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.distributionsProcessedTotal,
		m.tasksCreatedTotal,
		m.distributionFanout,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncDistributionProcessed(status string) {
	if m == nil {
		return
	}
	statusLabel := strings.TrimSpace(strings.ToLower(status))
	if statusLabel == "" {
		statusLabel = "unknown"
	}
	m.distributionsProcessedTotal.WithLabelValues(statusLabel).Inc()
}

func (m *Metrics) AddTasksCreated(count int) {
	if m == nil || count < 1 {
		return
	}
	m.tasksCreatedTotal.Add(float64(count))
}

func (m *Metrics) ObserveAgentFanout(agents int) {
	if m == nil || agents < 1 {
		return
	}
	m.distributionFanout.Observe(float64(agents))
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}
