package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Snapshot metrics
	SnapshotRefreshTotal    *prometheus.CounterVec
	SnapshotRefreshDuration *prometheus.HistogramVec
	SnapshotGeneration      prometheus.Gauge
	SnapshotBuiltAt         prometheus.Gauge

	// Store metrics
	StoreOperationsTotal *prometheus.CounterVec

	// Search cache metrics
	SearchCacheRequestsTotal *prometheus.CounterVec

	// API rate limiting
	RateLimitDecisionsTotal *prometheus.CounterVec

	// Business metrics
	ModulesTotal prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "denoid_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "denoid_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "denoid_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),

		// Snapshot metrics
		SnapshotRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "denoid_snapshot_refresh_total",
				Help: "Total number of snapshot rebuild attempts",
			},
			[]string{"provider", "status"},
		),
		SnapshotRefreshDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "denoid_snapshot_refresh_duration_seconds",
				Help:    "Snapshot rebuild duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),
		SnapshotGeneration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "denoid_snapshot_generation",
				Help: "Generation number of the published snapshot",
			},
		),
		SnapshotBuiltAt: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "denoid_snapshot_built_at_seconds",
				Help: "Unix time the published snapshot was built",
			},
		),

		// Store metrics
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "denoid_store_operations_total",
				Help: "Total number of snapshot store operations",
			},
			[]string{"operation", "status"},
		),

		// Search cache metrics
		SearchCacheRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "denoid_search_cache_requests_total",
				Help: "Total number of search cache lookups",
			},
			[]string{"result"},
		),

		// API rate limiting
		RateLimitDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "denoid_api_rate_limit_decisions_total",
				Help: "Total number of API rate limit decisions",
			},
			[]string{"result"},
		),

		// Business metrics
		ModulesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "denoid_modules_total",
				Help: "Number of modules in the published snapshot",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.SnapshotRefreshTotal,
		m.SnapshotRefreshDuration,
		m.SnapshotGeneration,
		m.SnapshotBuiltAt,
		m.StoreOperationsTotal,
		m.SearchCacheRequestsTotal,
		m.RateLimitDecisionsTotal,
		m.ModulesTotal,
	)

	return m
}

// ObserveCacheLookup records a search cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SearchCacheRequestsTotal.WithLabelValues(result).Inc()
}

// ObserveRateLimit records an API rate limit decision. result is one of
// allowed, limited, or error.
func (m *Metrics) ObserveRateLimit(result string) {
	m.RateLimitDecisionsTotal.WithLabelValues(result).Inc()
}

// ObserveStore records the outcome of a snapshot store operation
func (m *Metrics) ObserveStore(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// routeLabel keeps label cardinality bounded by using the matched mux
// template instead of the raw path.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			metrics.HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(router *mux.Router, registry *prometheus.Registry) {
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}
