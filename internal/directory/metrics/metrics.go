// Package metrics exposes directory activity as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "directory"

// Metrics groups the collectors updated by the directory service.
type Metrics struct {
	companies     prometheus.Gauge
	sessions      prometheus.Gauge
	mutations     *prometheus.CounterVec
	queryDuration prometheus.Histogram
	gatherer      prometheus.Gatherer
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers on reg and serves from gatherer.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		companies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "companies",
			Help:      "Number of companies in the store.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of open directory sessions.",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Committed store mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_duration_seconds",
			Help:      "Time spent deriving a session view (filter, sort, paginate).",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		gatherer: gatherer,
	}
	reg.MustRegister(m.companies, m.sessions, m.mutations, m.queryDuration)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) SetCompanies(n int) {
	m.companies.Set(float64(n))
}

func (m *Metrics) SetSessions(n int) {
	m.sessions.Set(float64(n))
}

// Mutation counts a store call. found=false marks a no-op on an unknown id.
func (m *Metrics) Mutation(op string, found bool) {
	outcome := "applied"
	if !found {
		outcome = "noop"
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObserveView(d time.Duration) {
	m.queryDuration.Observe(d.Seconds())
}
