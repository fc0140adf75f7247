package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics.
var (
	storedQuotes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quotes_stored",
			Help: "Number of quotes currently held in the store",
		},
	)

	archivedQuotesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quotes_archived_total",
			Help: "Total number of quotes moved from INACTIVE to ARCHIVED",
		},
	)

	validationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_validation_failures_total",
			Help: "Total number of rejected quote writes by field",
		},
		[]string{"field"},
	)
)
