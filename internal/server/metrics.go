package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus counters for the API surface.
type Metrics struct {
	registry *prometheus.Registry

	operations  *prometheus.CounterVec
	scanSeconds prometheus.Histogram
	held        prometheus.GaugeFunc
}

// NewMetrics builds the metric set. heldFn reports how many searchers the
// store currently holds.
func NewMetrics(heldFn func() float64) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexmatch",
			Subsystem: "server",
			Name:      "operations_total",
			Help:      "API operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		scanSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lexmatch",
			Subsystem: "server",
			Name:      "scan_duration_seconds",
			Help:      "Duration of match and subst scans.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
		}),
		held: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lexmatch",
			Subsystem: "server",
			Name:      "searchers_held",
			Help:      "Searchers currently held by the registry.",
		}, heldFn),
	}
	reg.MustRegister(m.operations, m.scanSeconds, m.held)
	return m
}

func (m *Metrics) observe(op string, err error, started time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	if op == "match" || op == "subst" {
		m.scanSeconds.Observe(time.Since(started).Seconds())
	}
}

// Handler exposes the metric registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
