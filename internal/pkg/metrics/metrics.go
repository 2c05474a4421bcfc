package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stages"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	trainings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "placement",
			Name:      "trainings_total",
			Help:      "Trainings created and deleted through the attribution screen.",
		},
		[]string{"action", "result"},
	)

	importRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Rows processed by tabular imports, by outcome.",
		},
		[]string{"kind", "outcome"},
	)

	importDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Duration of tabular imports.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"kind", "success"},
	)

	documents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "generated_total",
			Help:      "Generated export files, charge sheets and mails.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		trainings,
		importRows,
		importDuration,
		documents,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations. Paths are the route templates
// (/period/:id/students/) so ids do not blow up label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordTraining counts a training creation or deletion.
func RecordTraining(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	trainings.WithLabelValues(action, result).Inc()
}

// RecordImport records the outcome of one import run.
func RecordImport(kind string, duration time.Duration, created, modified, archived, errors int, success bool) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	importDuration.WithLabelValues(kind, strconv.FormatBool(success)).Observe(duration.Seconds())
	if !success {
		return
	}
	importRows.WithLabelValues(kind, "created").Add(float64(created))
	importRows.WithLabelValues(kind, "modified").Add(float64(modified))
	importRows.WithLabelValues(kind, "archived").Add(float64(archived))
	importRows.WithLabelValues(kind, "error").Add(float64(errors))
}

// RecordDocument counts a generated document of the given kind.
func RecordDocument(kind string, n int) {
	documents.WithLabelValues(kind).Add(float64(n))
}
