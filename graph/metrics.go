package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides Prometheus metrics for engine execution.
//
// Exposed metrics (namespaced "blogsmith_workflow_"):
//   - runs_total (counter, label: status): completed runs by outcome.
//   - steps_total (counter, labels: node_id, status): node executions.
//   - step_latency_ms (histogram, label: node_id): node execution latency.
//   - retries_total (counter, label: node_id): retry attempts.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics, err := NewMetrics(registry)
//	engine := New(reducer, store, emitter, opts).WithMetrics(metrics)
type Metrics struct {
	runsTotal    *prometheus.CounterVec
	stepsTotal   *prometheus.CounterVec
	stepLatency  *prometheus.HistogramVec
	retriesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers engine metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blogsmith",
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Workflow runs completed, by outcome.",
		}, []string{"status"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blogsmith",
			Subsystem: "workflow",
			Name:      "steps_total",
			Help:      "Node executions, by node and outcome.",
		}, []string{"node_id", "status"}),
		stepLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blogsmith",
			Subsystem: "workflow",
			Name:      "step_latency_ms",
			Help:      "Node execution latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000},
		}, []string{"node_id"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blogsmith",
			Subsystem: "workflow",
			Name:      "retries_total",
			Help:      "Node retry attempts.",
		}, []string{"node_id"}),
	}

	for _, c := range []prometheus.Collector{m.runsTotal, m.stepsTotal, m.stepLatency, m.retriesTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RunCompleted records a finished run with the given outcome ("ok"/"error").
func (m *Metrics) RunCompleted(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

// StepCompleted records one node execution and its latency.
func (m *Metrics) StepCompleted(nodeID, status string, elapsed time.Duration) {
	m.stepsTotal.WithLabelValues(nodeID, status).Inc()
	m.stepLatency.WithLabelValues(nodeID).Observe(float64(elapsed.Milliseconds()))
}

// RetryRecorded records one retry attempt for a node.
func (m *Metrics) RetryRecorded(nodeID string) {
	m.retriesTotal.WithLabelValues(nodeID).Inc()
}
