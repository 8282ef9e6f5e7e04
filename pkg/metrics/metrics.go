// Package metrics provides Prometheus instrumentation for concur components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for concur components.
type Registry struct {
	// Thread Pool Metrics
	PoolThreads     *prometheus.GaugeVec
	PoolQueued      *prometheus.GaugeVec
	PoolOutstanding *prometheus.GaugeVec
	JobsEnqueued    *prometheus.CounterVec
	JobsExecuted    *prometheus.CounterVec
	JobsDiscarded   *prometheus.CounterVec
	JobExecDuration *prometheus.HistogramVec

	// Event Queue Metrics
	EventsEnqueued   *prometheus.CounterVec
	EventsRejected   *prometheus.CounterVec
	EventsDispatched *prometheus.CounterVec
	HandlerDuration  *prometheus.HistogramVec
	QueueDepth       *prometheus.GaugeVec
	QueueCapacity    *prometheus.GaugeVec

	// Timer Metrics
	TimerFires            *prometheus.CounterVec
	TimerCallbackDuration *prometheus.HistogramVec
	TimerStarts           *prometheus.CounterVec
	TimerStops            *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by concur components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithNamespace(reg, DefaultNamespace)
}

// NewRegistryWithNamespace creates a registry whose metric names start with namespace.
func NewRegistryWithNamespace(reg prometheus.Registerer, namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Registry{
		// Thread Pool Metrics
		PoolThreads: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "threadpool",
				Name:      "threads",
				Help:      "Number of worker threads in the pool",
			},
			[]string{"pool_name"},
		),

		PoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "threadpool",
				Name:      "queued_jobs",
				Help:      "Number of jobs waiting to start",
			},
			[]string{"pool_name"},
		),

		PoolOutstanding: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "threadpool",
				Name:      "outstanding_jobs",
				Help:      "Number of queued plus executing jobs",
			},
			[]string{"pool_name"},
		),

		JobsEnqueued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "threadpool",
				Name:      "jobs_enqueued_total",
				Help:      "Total number of jobs enqueued",
			},
			[]string{"pool_name"},
		),

		JobsExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "threadpool",
				Name:      "jobs_executed_total",
				Help:      "Total number of jobs that ran to completion",
			},
			[]string{"pool_name"},
		),

		JobsDiscarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "threadpool",
				Name:      "jobs_discarded_total",
				Help:      "Total number of queued jobs removed before they started",
			},
			[]string{"pool_name"},
		),

		JobExecDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "threadpool",
				Name:      "job_duration_seconds",
				Help:      "Time spent executing jobs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		// Event Queue Metrics
		EventsEnqueued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "eventqueue",
				Name:      "events_enqueued_total",
				Help:      "Total number of events accepted by the queue",
			},
			[]string{"queue_name"},
		),

		EventsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "eventqueue",
				Name:      "events_rejected_total",
				Help:      "Total number of events rejected because the queue was full",
			},
			[]string{"queue_name"},
		),

		EventsDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "eventqueue",
				Name:      "events_dispatched_total",
				Help:      "Total number of events delivered to a handler",
			},
			[]string{"queue_name", "event_type"},
		),

		HandlerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "eventqueue",
				Name:      "handler_duration_seconds",
				Help:      "Time spent in event handlers",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"queue_name", "event_type"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "eventqueue",
				Name:      "depth",
				Help:      "Number of events waiting to be dispatched",
			},
			[]string{"queue_name"},
		),

		QueueCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "eventqueue",
				Name:      "capacity",
				Help:      "Maximum queue size, 0 when unbounded",
			},
			[]string{"queue_name"},
		),

		// Timer Metrics
		TimerFires: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "timer",
				Name:      "fires_total",
				Help:      "Total number of timer callback invocations",
			},
			[]string{"timer_name"},
		),

		TimerCallbackDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "timer",
				Name:      "callback_duration_seconds",
				Help:      "Time spent in timer callbacks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"timer_name"},
		),

		TimerStarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "timer",
				Name:      "starts_total",
				Help:      "Total number of timer (re)starts",
			},
			[]string{"timer_name"},
		),

		TimerStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "timer",
				Name:      "stops_total",
				Help:      "Total number of timer stops",
			},
			[]string{"timer_name"},
		),
	}
}
