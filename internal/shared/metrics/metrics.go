package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "watch_relay"

// Metrics groups the counters exported on /metrics.
type Metrics struct {
	EventsRouted  prometheus.Counter
	Filtered      prometheus.Counter
	Forwards      *prometheus.CounterVec
	Migrations    *prometheus.CounterVec
	Enrichments   *prometheus.CounterVec
	Subscriptions prometheus.Gauge
}

// New creates the relay counters and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_routed_total",
			Help:      "Events that matched at least one subscription.",
		}),
		Filtered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_filtered_total",
			Help:      "Subscription matches dropped by the filter chain.",
		}),
		Forwards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forwards_total",
			Help:      "Forward attempts by result.",
		}, []string{"result"}),
		Migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migrations_total",
			Help:      "Stream migration corrections by result.",
		}, []string{"result"}),
		Enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichments_total",
			Help:      "Enrichment runs by outcome.",
		}, []string{"outcome"}),
		Subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions_created",
			Help:      "Subscriptions created since start minus those removed.",
		}),
	}

	reg.MustRegister(m.EventsRouted, m.Filtered, m.Forwards, m.Migrations, m.Enrichments, m.Subscriptions)
	return m
}
