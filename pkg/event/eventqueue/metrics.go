package eventqueue

import (
	"context"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/concur/pkg/metrics"
)

// MetricsQueue wraps a Queue with Prometheus metrics collection.
type MetricsQueue struct {
	queue    Queue
	name     string
	registry atomic.Pointer[metrics.Registry]
	enabled  atomic.Bool
}

// NewWithMetrics creates a new event queue with metrics enabled.
func NewWithMetrics(maxSize int, name string) *MetricsQueue {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := DefaultConfig()
	config.MaxSize = maxSize
	config.Name = name

	return NewWithConfigAndMetrics(config, metrics.Config{
		Enabled:  true,
		Registry: registry,
	})
}

// NewWithConfigAndMetrics creates a new event queue with custom config and metrics.
func NewWithConfigAndMetrics(config Config, metricsConfig metrics.Config) *MetricsQueue {
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}

	mq := &MetricsQueue{name: config.Name}
	mq.registry.Store(metrics.FromConfig(metricsConfig))
	mq.enabled.Store(metricsConfig.Enabled)

	userDispatch := config.OnDispatch
	config.OnDispatch = func(t reflect.Type, handled bool, d time.Duration) {
		if userDispatch != nil {
			userDispatch(t, handled, d)
		}
		if !mq.enabled.Load() {
			return
		}
		reg := mq.registry.Load()
		typeName := t.String()
		if handled {
			reg.EventsDispatched.WithLabelValues(mq.name, typeName).Inc()
			reg.HandlerDuration.WithLabelValues(mq.name, typeName).Observe(d.Seconds())
		}
		reg.QueueDepth.WithLabelValues(mq.name).Set(float64(mq.queue.Len()))
	}

	mq.queue = NewWithConfig(config)
	mq.updateMetrics()

	return mq
}

// updateMetrics updates the current state metrics.
func (mq *MetricsQueue) updateMetrics() {
	if !mq.enabled.Load() {
		return
	}

	reg := mq.registry.Load()
	reg.QueueDepth.WithLabelValues(mq.name).Set(float64(mq.queue.Len()))
	reg.QueueCapacity.WithLabelValues(mq.name).Set(float64(mq.queue.Cap()))
}

// Enqueue appends event and records whether it was accepted.
func (mq *MetricsQueue) Enqueue(event any) bool {
	return mq.TryEnqueue(event) == nil
}

// TryEnqueue appends event, records whether it was accepted and returns the
// rejection reason.
func (mq *MetricsQueue) TryEnqueue(event any) error {
	err := mq.queue.TryEnqueue(event)
	if mq.enabled.Load() {
		reg := mq.registry.Load()
		if err == nil {
			reg.EventsEnqueued.WithLabelValues(mq.name).Inc()
		} else {
			reg.EventsRejected.WithLabelValues(mq.name).Inc()
		}
		reg.QueueDepth.WithLabelValues(mq.name).Set(float64(mq.queue.Len()))
	}
	return err
}

// SetHandler registers h for events of type t.
func (mq *MetricsQueue) SetHandler(t reflect.Type, h Handler) {
	mq.queue.SetHandler(t, h)
}

// SetHandlers registers several handlers at once.
func (mq *MetricsQueue) SetHandlers(handlers map[reflect.Type]Handler) {
	mq.queue.SetHandlers(handlers)
}

// Run processes events until Stop is called.
func (mq *MetricsQueue) Run() {
	mq.queue.Run()
}

// RunContext processes events until Stop is called or ctx is done.
func (mq *MetricsQueue) RunContext(ctx context.Context) error {
	return mq.queue.RunContext(ctx)
}

// Stop makes Run return.
func (mq *MetricsQueue) Stop() {
	mq.queue.Stop()
}

// IsRunning reports whether a Run loop is active.
func (mq *MetricsQueue) IsRunning() bool {
	return mq.queue.IsRunning()
}

// Len returns the number of queued events.
func (mq *MetricsQueue) Len() int {
	return mq.queue.Len()
}

// Cap returns the queue capacity.
func (mq *MetricsQueue) Cap() int {
	return mq.queue.Cap()
}

// Wrap returns a function that enqueues fn as a Callback event.
func (mq *MetricsQueue) Wrap(fn func()) func() bool {
	return func() bool {
		return mq.Enqueue(Callback(fn))
	}
}

// Close stops the queue and rejects further events.
func (mq *MetricsQueue) Close() {
	mq.queue.Close()
}

// EnableMetrics enables metrics collection.
func (mq *MetricsQueue) EnableMetrics(config metrics.Config) error {
	if config.Registry != nil {
		mq.registry.Store(metrics.FromConfig(config))
	}
	mq.enabled.Store(config.Enabled)
	mq.updateMetrics()
	return nil
}

// DisableMetrics disables metrics collection.
func (mq *MetricsQueue) DisableMetrics() {
	mq.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mq *MetricsQueue) MetricsEnabled() bool {
	return mq.enabled.Load()
}

var (
	_ Queue                  = (*MetricsQueue)(nil)
	_ metrics.Instrumentable = (*MetricsQueue)(nil)
)
