package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/concur/pkg/metrics"
)

// MetricsTimer wraps a Timer with Prometheus metrics collection.
type MetricsTimer struct {
	timer    Timer
	name     string
	registry atomic.Pointer[metrics.Registry]
	enabled  atomic.Bool

	mu       sync.Mutex
	callback func()
}

// NewWithMetrics creates a new timer with metrics enabled.
func NewWithMetrics(name string) *MetricsTimer {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := DefaultConfig()
	config.Name = name

	return NewWithConfigAndMetrics(config, metrics.Config{
		Enabled:  true,
		Registry: registry,
	})
}

// NewWithConfigAndMetrics creates a new timer with custom config and metrics.
func NewWithConfigAndMetrics(config Config, metricsConfig metrics.Config) *MetricsTimer {
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}

	mt := &MetricsTimer{
		name:     config.Name,
		callback: config.Callback,
	}
	mt.registry.Store(metrics.FromConfig(metricsConfig))
	mt.enabled.Store(metricsConfig.Enabled)

	// The inner timer always calls the instrumented trampoline; the user
	// callback lives here so it can be swapped without re-wrapping.
	config.Callback = mt.fire
	mt.timer = NewWithConfig(config)

	return mt
}

func (mt *MetricsTimer) fire() {
	mt.mu.Lock()
	callback := mt.callback
	mt.mu.Unlock()

	if callback == nil {
		return
	}
	if !mt.enabled.Load() {
		callback()
		return
	}

	start := time.Now()
	callback()

	reg := mt.registry.Load()
	reg.TimerFires.WithLabelValues(mt.name).Inc()
	reg.TimerCallbackDuration.WithLabelValues(mt.name).Observe(time.Since(start).Seconds())
}

// Start schedules the timer.
func (mt *MetricsTimer) Start(delay, interval time.Duration) {
	mt.timer.Start(delay, interval)
	if mt.enabled.Load() {
		mt.registry.Load().TimerStarts.WithLabelValues(mt.name).Inc()
	}
}

// StartInterval is Start(interval, interval).
func (mt *MetricsTimer) StartInterval(interval time.Duration) {
	mt.Start(interval, interval)
}

// StartSingleshot is Start(delay, 0).
func (mt *MetricsTimer) StartSingleshot(delay time.Duration) {
	mt.Start(delay, 0)
}

// SetCallback replaces the callback.
func (mt *MetricsTimer) SetCallback(callback func()) {
	mt.mu.Lock()
	mt.callback = callback
	mt.mu.Unlock()
}

// SetReliability sets the timer's margin.
func (mt *MetricsTimer) SetReliability(margin time.Duration) {
	mt.timer.SetReliability(margin)
}

// Reliability returns the timer's margin.
func (mt *MetricsTimer) Reliability() time.Duration {
	return mt.timer.Reliability()
}

// Stop makes the timer idle.
func (mt *MetricsTimer) Stop() {
	mt.timer.Stop()
	if mt.enabled.Load() {
		mt.registry.Load().TimerStops.WithLabelValues(mt.name).Inc()
	}
}

// IsRunning reports whether a fire is scheduled.
func (mt *MetricsTimer) IsRunning() bool {
	return mt.timer.IsRunning()
}

// Close stops the timer and waits for its goroutine.
func (mt *MetricsTimer) Close() {
	mt.timer.Close()
}

// EnableMetrics enables metrics collection.
func (mt *MetricsTimer) EnableMetrics(config metrics.Config) error {
	if config.Registry != nil {
		mt.registry.Store(metrics.FromConfig(config))
	}
	mt.enabled.Store(config.Enabled)
	return nil
}

// DisableMetrics disables metrics collection.
func (mt *MetricsTimer) DisableMetrics() {
	mt.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mt *MetricsTimer) MetricsEnabled() bool {
	return mt.enabled.Load()
}

var (
	_ Timer                  = (*MetricsTimer)(nil)
	_ metrics.Instrumentable = (*MetricsTimer)(nil)
)
