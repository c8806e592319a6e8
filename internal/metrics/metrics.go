// Package metrics exposes streamcore's Prometheus instrumentation,
// grounded on the actual client_golang dependency the teacher's
// control-plane imports (rather than a hand-rolled exporter).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the counters/gauges the TopK operator and graph report
// against.
type Registry struct {
	TuplesConsumed   prometheus.Counter
	WindowsCreated   prometheus.Counter
	FeatureMapErrors prometheus.Counter
	BusPublishErrors prometheus.Counter

	GraphEdgesInserted prometheus.Counter
	GraphEdgesEvicted  prometheus.Counter
	GraphWorkUnits     prometheus.Counter
	GraphEdgesCurrent  prometheus.Gauge
}

// NewRegistry constructs a Registry and registers all metrics with reg.
// Callers typically pass prometheus.NewRegistry() or
// prometheus.DefaultRegisterer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		TuplesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Subsystem: "topk",
			Name:      "tuples_consumed_total",
			Help:      "Total tuples consumed by the TopK operator.",
		}),
		WindowsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Subsystem: "topk",
			Name:      "windows_created_total",
			Help:      "Total SlidingWindow instances created across all group keys.",
		}),
		FeatureMapErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Subsystem: "topk",
			Name:      "feature_map_errors_total",
			Help:      "Total errors returned by FeatureMap.Upsert.",
		}),
		BusPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Subsystem: "topk",
			Name:      "bus_publish_errors_total",
			Help:      "Total errors returned by Bus.Publish.",
		}),
		GraphEdgesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Subsystem: "graph",
			Name:      "edges_inserted_total",
			Help:      "Total edges inserted into the graph.",
		}),
		GraphEdgesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Subsystem: "graph",
			Name:      "edges_evicted_total",
			Help:      "Total edges evicted by cleanup passes.",
		}),
		GraphWorkUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcore",
			Subsystem: "graph",
			Name:      "work_units_total",
			Help:      "Total work units (edges touched) spent across AddEdge calls.",
		}),
		GraphEdgesCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamcore",
			Subsystem: "graph",
			Name:      "edges_current",
			Help:      "Edges currently retained in the graph, per the last CountEdges sample.",
		}),
	}

	reg.MustRegister(
		r.TuplesConsumed,
		r.WindowsCreated,
		r.FeatureMapErrors,
		r.BusPublishErrors,
		r.GraphEdgesInserted,
		r.GraphEdgesEvicted,
		r.GraphWorkUnits,
		r.GraphEdgesCurrent,
	)

	return r
}
