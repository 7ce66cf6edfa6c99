// Package metrics provides Prometheus metrics for the warehouse service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks inbound HTTP requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warehouse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "warehouse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// UnitsReceivedTotal tracks inventory units recorded through receiving
	UnitsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warehouse",
			Subsystem: "receiving",
			Name:      "units_total",
			Help:      "Total number of inventory units received by channel",
		},
		[]string{"channel"},
	)

	// RMALinesImportedTotal tracks RMA manifest lines by import outcome
	RMALinesImportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warehouse",
			Subsystem: "receiving",
			Name:      "rma_lines_total",
			Help:      "Total number of RMA manifest lines by import outcome",
		},
		[]string{"outcome"},
	)

	// ShipoutsCompletedTotal tracks shipouts marked Shipped
	ShipoutsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "warehouse",
			Subsystem: "shipping",
			Name:      "shipouts_completed_total",
			Help:      "Total number of shipouts marked as shipped",
		},
	)

	// EventsPublishedTotal tracks lifecycle events published to Kafka
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warehouse",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of lifecycle events published by topic and status",
		},
		[]string{"topic", "status"},
	)
)
