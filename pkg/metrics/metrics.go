// Package metrics exposes the prometheus instruments for canvas activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flowdeck_sessions_active",
		Help: "Number of canvas sessions currently open.",
	})

	NodesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowdeck_nodes_created_total",
		Help: "Total number of nodes added to canvases.",
	})

	NodesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowdeck_nodes_removed_total",
		Help: "Total number of nodes removed from canvases.",
	})

	EdgesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowdeck_edges_created_total",
		Help: "Total number of edges added to canvases.",
	})

	EdgesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowdeck_edges_removed_total",
		Help: "Total number of edges removed from canvases.",
	})

	OutputsSet = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowdeck_outputs_set_total",
		Help: "Total number of output records written to canvases.",
	})

	OutputsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowdeck_outputs_removed_total",
		Help: "Total number of output records removed from canvases.",
	})

	ProducerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowdeck_producer_runs_total",
		Help: "Total number of producer runs, labelled by node kind and status.",
	}, []string{"kind", "status"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowdeck_run_duration_ms",
		Help:    "Producer run latency in milliseconds.",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowdeck_events_published_total",
		Help: "Total number of canvas events published to the bus, labelled by type.",
	}, []string{"type"})
)
