// Package metrics exposes Prometheus counters for the distillation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page outcomes
const (
	OutcomeOK      = "ok"
	OutcomeDefault = "default"
	OutcomeFailed  = "failed"
)

// Image check results
const (
	ImageAccepted = "accepted"
	ImageRejected = "rejected"
	ImageError    = "error"
)

// Collector holds the pipeline metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	pagesTotal        *prometheus.CounterVec
	imageChecksTotal  *prometheus.CounterVec
	resolveDuration   prometheus.Histogram
	httpRequestsTotal *prometheus.CounterVec
}

// NewCollector creates the pipeline metrics on a private registry
func NewCollector(namespace string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.pagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages processed, by outcome",
		},
		[]string{"outcome"},
	)

	c.imageChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_checks_total",
			Help:      "Image header checks, by result",
		},
		[]string{"result"},
	)

	c.resolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time spent in the arbitration step",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	c.registry.MustRegister(c.pagesTotal, c.imageChecksTotal, c.resolveDuration, c.httpRequestsTotal)
	return c
}

// Registry returns the registry the collector's metrics live on
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) PageProcessed(outcome string) {
	if c == nil {
		return
	}
	c.pagesTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) ImageChecked(result string) {
	if c == nil {
		return
	}
	c.imageChecksTotal.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveResolve(d time.Duration) {
	if c == nil {
		return
	}
	c.resolveDuration.Observe(d.Seconds())
}

// Middleware counts HTTP requests by route
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		if c == nil {
			return
		}

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		c.httpRequestsTotal.WithLabelValues(ctx.Request.Method, endpoint, strconv.Itoa(ctx.Writer.Status())).Inc()
	}
}

// Handler serves the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
