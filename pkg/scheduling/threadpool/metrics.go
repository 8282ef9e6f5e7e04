package threadpool

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/concur/pkg/metrics"
)

// MetricsPool wraps a thread Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry atomic.Pointer[metrics.Registry]
	enabled  atomic.Bool
}

// NewWithMetrics creates a new thread pool with metrics enabled.
func NewWithMetrics(threads int, name string) *MetricsPool {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := DefaultConfig()
	config.Threads = threads
	config.Name = name

	return NewWithConfigAndMetrics(config, metrics.Config{
		Enabled:  true,
		Registry: registry,
	})
}

// NewWithConfigAndMetrics creates a new thread pool with custom config and metrics.
// Job timings are collected through the OnJobStart and OnJobComplete hooks,
// which still forward to any hooks already present in config.
func NewWithConfigAndMetrics(config Config, metricsConfig metrics.Config) *MetricsPool {
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}

	mp := &MetricsPool{name: config.Name}
	mp.registry.Store(metrics.FromConfig(metricsConfig))
	mp.enabled.Store(metricsConfig.Enabled)

	userComplete := config.OnJobComplete
	config.OnJobComplete = func(workerIndex int, d time.Duration) {
		if userComplete != nil {
			userComplete(workerIndex, d)
		}
		if mp.enabled.Load() {
			reg := mp.registry.Load()
			reg.JobsExecuted.WithLabelValues(mp.name).Inc()
			reg.JobExecDuration.WithLabelValues(mp.name).Observe(d.Seconds())
			mp.updateMetrics()
		}
	}

	mp.pool = NewWithConfig(config)
	mp.updateMetrics()

	return mp
}

// updateMetrics updates the current state metrics.
func (mp *MetricsPool) updateMetrics() {
	if !mp.enabled.Load() {
		return
	}

	reg := mp.registry.Load()
	reg.PoolThreads.WithLabelValues(mp.name).Set(float64(mp.pool.ThreadCount()))
	reg.PoolQueued.WithLabelValues(mp.name).Set(float64(mp.pool.QueueCount()))
	reg.PoolOutstanding.WithLabelValues(mp.name).Set(float64(mp.pool.TotalJobCount()))
}

func (mp *MetricsPool) countDiscarded(n int) {
	if n > 0 && mp.enabled.Load() {
		mp.registry.Load().JobsDiscarded.WithLabelValues(mp.name).Add(float64(n))
	}
}

// Enqueue adds a job to the pool.
func (mp *MetricsPool) Enqueue(job Job) {
	mp.pool.Enqueue(job)
	if job != nil && mp.enabled.Load() {
		mp.registry.Load().JobsEnqueued.WithLabelValues(mp.name).Inc()
		mp.updateMetrics()
	}
}

// EnqueueAll adds jobs to the pool in order.
func (mp *MetricsPool) EnqueueAll(jobs []Job) {
	mp.pool.EnqueueAll(jobs)
	if mp.enabled.Load() {
		n := 0
		for _, job := range jobs {
			if job != nil {
				n++
			}
		}
		mp.registry.Load().JobsEnqueued.WithLabelValues(mp.name).Add(float64(n))
		mp.updateMetrics()
	}
}

// QueueCount returns the number of jobs waiting to start.
func (mp *MetricsPool) QueueCount() int {
	return mp.pool.QueueCount()
}

// TotalJobCount returns queued plus executing jobs.
func (mp *MetricsPool) TotalJobCount() int {
	return mp.pool.TotalJobCount()
}

// ThreadCount returns the number of workers.
func (mp *MetricsPool) ThreadCount() int {
	return mp.pool.ThreadCount()
}

// Clear discards queued jobs and counts them as discarded.
func (mp *MetricsPool) Clear() {
	mp.countDiscarded(len(mp.pool.DequeueAll()))
	mp.updateMetrics()
}

// DequeueAll removes and returns queued jobs.
func (mp *MetricsPool) DequeueAll() []Job {
	jobs := mp.pool.DequeueAll()
	mp.countDiscarded(len(jobs))
	mp.updateMetrics()
	return jobs
}

// Wait blocks until the pool has no outstanding jobs.
func (mp *MetricsPool) Wait() {
	mp.pool.Wait()
}

// WaitFor blocks until the pool has no outstanding jobs or timeout elapses.
func (mp *MetricsPool) WaitFor(timeout time.Duration) bool {
	return mp.pool.WaitFor(timeout)
}

// WaitContext blocks until the pool has no outstanding jobs or ctx is done.
func (mp *MetricsPool) WaitContext(ctx context.Context) error {
	return mp.pool.WaitContext(ctx)
}

// Wrap returns a function that enqueues job on this pool.
func (mp *MetricsPool) Wrap(job Job) func() {
	return func() {
		mp.Enqueue(job)
	}
}

// Shutdown initiates shutdown of the pool.
func (mp *MetricsPool) Shutdown() <-chan struct{} {
	mp.countDiscarded(mp.pool.QueueCount())
	done := mp.pool.Shutdown()
	mp.updateMetrics()
	return done
}

// Close shuts the pool down and waits for the workers to exit.
func (mp *MetricsPool) Close() {
	<-mp.Shutdown()
}

// EnableMetrics enables metrics collection.
func (mp *MetricsPool) EnableMetrics(config metrics.Config) error {
	if config.Registry != nil {
		mp.registry.Store(metrics.FromConfig(config))
	}
	mp.enabled.Store(config.Enabled)
	mp.updateMetrics()
	return nil
}

// DisableMetrics disables metrics collection.
func (mp *MetricsPool) DisableMetrics() {
	mp.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mp *MetricsPool) MetricsEnabled() bool {
	return mp.enabled.Load()
}

var (
	_ Pool                   = (*MetricsPool)(nil)
	_ metrics.Instrumentable = (*MetricsPool)(nil)
)
