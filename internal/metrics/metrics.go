// Package metrics wraps the concurrency core's Prometheus instrumentation,
// grounded on internal/background/metrics.go's WorkerPoolMetrics: the same
// promauto-registered gauge/counter/histogram shape, rescoped to the
// gds/concurrency namespace.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics holds the Prometheus series emitted by a WorkerPool and the
// bounded-concurrency driver that runs on top of it.
type PoolMetrics struct {
	WorkersActive prometheus.Gauge
	WorkersTotal  prometheus.Gauge

	TasksTotal   *prometheus.CounterVec
	TasksInQueue *prometheus.GaugeVec
	TaskDuration *prometheus.HistogramVec

	DriverInFlight  *prometheus.GaugeVec
	DriverStallTotal *prometheus.CounterVec
}

// NewPoolMetrics registers and returns a fresh PoolMetrics against the
// default Prometheus registry. Callers that need isolation (tests running
// in parallel) should use NewPoolMetricsFor with a private registry.
func NewPoolMetrics() *PoolMetrics {
	return NewPoolMetricsFor(prometheus.DefaultRegisterer)
}

// NewPoolMetricsFor registers against an explicit registerer so tests can
// use prometheus.NewRegistry() instead of colliding on the global default.
func NewPoolMetricsFor(reg prometheus.Registerer) *PoolMetrics {
	factory := promauto.With(reg)
	return &PoolMetrics{
		WorkersActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gds",
			Subsystem: "concurrency",
			Name:      "workers_active",
			Help:      "Number of workers currently executing a task.",
		}),
		WorkersTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gds",
			Subsystem: "concurrency",
			Name:      "workers_total",
			Help:      "Total number of live workers (active and idle).",
		}),
		TasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gds",
			Subsystem: "concurrency",
			Name:      "tasks_total",
			Help:      "Total number of tasks settled, by outcome.",
		}, []string{"status"}),
		TasksInQueue: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gds",
			Subsystem: "concurrency",
			Name:      "tasks_in_queue",
			Help:      "Number of tasks currently queued, by pool.",
		}, []string{"pool"}),
		TaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gds",
			Subsystem: "concurrency",
			Name:      "task_duration_seconds",
			Help:      "Task execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pool"}),
		DriverInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gds",
			Subsystem: "concurrency",
			Name:      "driver_inflight",
			Help:      "Tasks currently in flight inside a bounded-concurrency driver run.",
		}, []string{"driver"}),
		DriverStallTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gds",
			Subsystem: "concurrency",
			Name:      "driver_stall_total",
			Help:      "Count of stalled submit attempts (refused with nothing in flight) observed by a driver run.",
		}, []string{"driver"}),
	}
}
