package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_events_total",
			Help: "Storage notifications received, by outcome",
		},
		[]string{"outcome"}, // loaded, skipped, ignored, malformed, error
	)

	unitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_units_total",
			Help: "Per-file load units executed, by family and status",
		},
		[]string{"family", "status"}, // loaded, skipped, error
	)

	rowsMergedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_rows_merged_total",
			Help: "New rows inserted into final tables by the merge step",
		},
		[]string{"family"},
	)

	unitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loader_unit_duration_seconds",
			Help:    "Duration of completed per-file load units",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"family"},
	)
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
