// Package metrics provides Prometheus instrumentation for concur components.
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	pool := threadpool.NewWithMetrics(4, "io")
//	queue := eventqueue.NewWithMetrics(128, "ui")
//	tick := timer.NewWithMetrics("heartbeat")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	pool := threadpool.NewWithConfigAndMetrics(
//		threadpool.Config{Threads: 4},
//		"io",
//		metrics.Config{Enabled: true, Registry: registry},
//	)
//
// # Available Metrics
//
// ## Thread Pool Metrics
//
//   - concur_threadpool_threads: Number of worker threads in the pool
//   - concur_threadpool_queued_jobs: Number of jobs waiting to start
//   - concur_threadpool_outstanding_jobs: Queued plus executing jobs
//   - concur_threadpool_jobs_enqueued_total / jobs_executed_total / jobs_discarded_total
//   - concur_threadpool_job_duration_seconds
//
// ## Event Queue Metrics
//
//   - concur_eventqueue_events_enqueued_total: Events accepted by the queue
//   - concur_eventqueue_events_rejected_total: Events rejected at capacity
//   - concur_eventqueue_events_dispatched_total{event_type}: Events delivered to a handler
//   - concur_eventqueue_handler_duration_seconds{event_type}
//   - concur_eventqueue_depth, concur_eventqueue_capacity
//
// ## Timer Metrics
//
//   - concur_timer_fires_total, concur_timer_callback_duration_seconds
//   - concur_timer_starts_total, concur_timer_stops_total
//
// # Labels
//
//   - pool_name, queue_name, timer_name: user-provided instance names
//   - event_type: Go type of the dispatched event
//
// # Runtime Control
//
// Components implementing the Instrumentable interface support runtime control:
//
//	pool := threadpool.NewWithMetrics(4, "io")
//	pool.(metrics.Instrumentable).DisableMetrics()
package metrics
