package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Shop holds the process metric instruments.
type Shop struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	operations *prometheus.CounterVec
}

// NewShop registers the instruments on a fresh registry.
func NewShop() *Shop {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"endpoint", "status_code"})

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_server_in_flight",
		Help: "In-flight HTTP requests.",
	})

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_operations_total",
		Help: "Purchase and refund outcomes.",
	}, []string{"operation", "result"})

	registry.MustRegister(requestDuration, inFlight, operations)

	return &Shop{
		registry:        registry,
		requestDuration: requestDuration,
		inFlight:        inFlight,
		operations:      operations,
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Shop) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// RecordOperation counts one purchase/refund outcome.
func (m *Shop) RecordOperation(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// GinMiddleware records request duration and in-flight gauges with
// low-cardinality endpoint labels.
func GinMiddleware(m *Shop) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.inFlight.Inc()
		start := time.Now()
		c.Next()
		m.inFlight.Dec()

		m.requestDuration.
			WithLabelValues(endpoint, strconv.Itoa(c.Writer.Status())).
			Observe(float64(time.Since(start).Milliseconds()))
	}
}
