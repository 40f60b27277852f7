package router

import (
	"strconv"
	"time"

	"github.com/akeren/telecheck/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace = "telecheck"
	metricsPath      = "/metrics"
)

var httpLabels = []string{"method", "route", "status"}

type httpMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route template and status.",
		}, httpLabels),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, httpLabels),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served. Event streams stay in flight for the whole run.",
		}),
	}

	reg.MustRegister(m.requests, m.latency, m.inFlight)
	return m
}

func (m *httpMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.inFlight.Inc()
		start := time.Now()
		c.Next()
		m.inFlight.Dec()

		// Route templates keep cardinality bounded; raw paths of 404s would not.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}

		m.requests.WithLabelValues(labels...).Inc()
		m.latency.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	}
}

// mountMetrics must run before the global middleware is attached so the
// scrape endpoint skips rate limiting and session handling.
func (routerService *RouterService) mountMetrics() {
	if !utils.GetEnvBool("METRICS_ENABLED", true) {
		routerService.logger.Info("Metrics endpoint disabled")
		return
	}

	reg := routerService.registry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	routerService.engine.Use(newHTTPMetrics(reg).middleware())
	routerService.engine.GET(metricsPath, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	routerService.logger.Info("Metrics endpoint mounted", "path", metricsPath)
}

func (routerService *RouterService) registry() *prometheus.Registry {
	if routerService.metricsRegistry == nil {
		routerService.metricsRegistry = prometheus.NewRegistry()
	}
	return routerService.metricsRegistry
}

// MetricsRegisterer lets domains register their collectors next to the HTTP
// ones. The registry exists even when the endpoint is disabled.
func (routerService *RouterService) MetricsRegisterer() prometheus.Registerer {
	return routerService.registry()
}
