package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "option_greeks"

// Metrics is the set of service collectors.
type Metrics struct {
	// Requests counts HTTP requests by route and status code.
	Requests *prometheus.CounterVec
	// RequestDuration observes handler latency by route.
	RequestDuration *prometheus.HistogramVec
	// IVFailures counts implied volatility searches that did not converge,
	// by reason.
	IVFailures *prometheus.CounterVec
	// IVIterations observes the iterations used by successful searches.
	IVIterations prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		IVFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "iv",
			Name:      "failures_total",
			Help:      "Implied volatility searches that failed",
		}, []string{"reason"}),
		IVIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "iv",
			Name:      "iterations",
			Help:      "Iterations used by converged implied volatility searches",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 32, 64, 100},
		}),
	}
	reg.MustRegister(m.Requests, m.RequestDuration, m.IVFailures, m.IVIterations)
	return m
}

// instrument records every request handled by the engine.
func (m *Metrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
