// Package metrics exposes the Prometheus metrics of the trading sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the session service.
type Metrics struct {
	OrdersApplied  *prometheus.CounterVec // labels: side
	OrdersRejected *prometheus.CounterVec // labels: kind
	// SessionsOpen counts the sessions opened minus the sessions closed by
	// this process. Redis sessions that expire are not subtracted.
	SessionsOpen   prometheus.Gauge
	ValuationDur   prometheus.Histogram
	QuoteErrors    prometheus.Counter

	registry *prometheus.Registry
}

// New registers and returns all metrics on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		OrdersApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coachfolio_orders_applied_total",
			Help: "Total orders applied to a portfolio",
		}, []string{"side"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coachfolio_orders_rejected_total",
			Help: "Total orders rejected by the ledger",
		}, []string{"kind"}),
		SessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coachfolio_sessions_open",
			Help: "Sessions opened minus sessions closed by this process",
		}),
		ValuationDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coachfolio_valuation_duration_seconds",
			Help:    "Time to value a portfolio, quote fetching included",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		QuoteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coachfolio_quote_errors_total",
			Help: "Live quote fetches that failed, valuation fell back to last known prices",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.OrdersApplied,
		m.OrdersRejected,
		m.SessionsOpen,
		m.ValuationDur,
		m.QuoteErrors,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
