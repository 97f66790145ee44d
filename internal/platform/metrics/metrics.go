// Package metrics exposes Prometheus counters and histograms for stock
// transitions, scraped from METRICS_PORT/metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_transitions_total",
			Help: "Count of stock transitions by type and outcome.",
		},
		[]string{"transition", "outcome"},
	)

	TransitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_transition_duration_seconds",
			Help:    "Latency of stock transitions by type.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transition"},
	)

	LowStockEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_low_stock_events_total",
			Help: "Count of low-stock events emitted after a transition.",
		},
		[]string{"sku", "location"},
	)
)

// Handler serves the Prometheus exposition format for METRICS_PORT/metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
