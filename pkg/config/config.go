// Package config loads concur settings from YAML files.
//
// A file may set any subset of the knobs below; omitted keys keep their defaults.
//
//	thread_pool:
//	  threads: 0          # 0 = GOMAXPROCS
//	  lock_os_thread: false
//	  name: workers
//	event_queue:
//	  max_size: 1024      # 0 = unbounded
//	  name: events
//	timer:
//	  reliability: 2ms    # 0s..1s
//	  name: ticker
//	metrics:
//	  enabled: true
//	  namespace: concur
//	log:
//	  level: info         # debug, info, warn, error
//	  pretty: false
//
// Unknown keys are rejected so typos surface at load time.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	yaml "go.yaml.in/yaml/v3"

	"github.com/vnykmshr/concur/pkg/common/logging"
	"github.com/vnykmshr/concur/pkg/common/validation"
	"github.com/vnykmshr/concur/pkg/event/eventqueue"
	"github.com/vnykmshr/concur/pkg/metrics"
	"github.com/vnykmshr/concur/pkg/scheduling/threadpool"
	"github.com/vnykmshr/concur/pkg/scheduling/timer"
)

// Config is the root of a configuration file.
type Config struct {
	ThreadPool ThreadPoolConfig `yaml:"thread_pool"`
	EventQueue EventQueueConfig `yaml:"event_queue"`
	Timer      TimerConfig      `yaml:"timer"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// ThreadPoolConfig configures a thread pool.
type ThreadPoolConfig struct {
	Threads      int    `yaml:"threads"`
	LockOSThread bool   `yaml:"lock_os_thread"`
	Name         string `yaml:"name"`
}

// EventQueueConfig configures an event queue.
type EventQueueConfig struct {
	MaxSize int    `yaml:"max_size"`
	Name    string `yaml:"name"`
}

// TimerConfig configures a timer.
type TimerConfig struct {
	Reliability time.Duration `yaml:"reliability"`
	Name        string        `yaml:"name"`
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ThreadPool: ThreadPoolConfig{Name: threadpool.DefaultConfig().Name},
		EventQueue: EventQueueConfig{Name: eventqueue.DefaultConfig().Name},
		Timer: TimerConfig{
			Reliability: timer.DefaultReliability,
			Name:        timer.DefaultConfig().Name,
		},
		Metrics: MetricsConfig{Namespace: metrics.DefaultNamespace},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	return errors.Join(
		validation.ValidateNonNegative("config", "thread_pool.threads", c.ThreadPool.Threads),
		validation.ValidateNonNegative("config", "event_queue.max_size", c.EventQueue.MaxSize),
		validation.ValidateDurationRange("config", "timer.reliability", c.Timer.Reliability, 0, timer.MaxReliability),
		validation.ValidateOneOf("config", "log.level", c.Log.Level, "debug", "info", "warn", "warning", "error"),
	)
}

// ThreadPoolConfig converts the thread_pool section. The logger may be nil.
func (c *Config) ThreadPoolConfig(log *zerolog.Logger) threadpool.Config {
	cfg := threadpool.DefaultConfig()
	cfg.Threads = c.ThreadPool.Threads
	cfg.LockOSThread = c.ThreadPool.LockOSThread
	if c.ThreadPool.Name != "" {
		cfg.Name = c.ThreadPool.Name
	}
	cfg.Logger = log
	return cfg
}

// EventQueueConfig converts the event_queue section. The logger may be nil.
func (c *Config) EventQueueConfig(log *zerolog.Logger) eventqueue.Config {
	cfg := eventqueue.DefaultConfig()
	cfg.MaxSize = c.EventQueue.MaxSize
	if c.EventQueue.Name != "" {
		cfg.Name = c.EventQueue.Name
	}
	cfg.Logger = log
	return cfg
}

// TimerConfig converts the timer section. The logger may be nil.
func (c *Config) TimerConfig(log *zerolog.Logger) timer.Config {
	cfg := timer.DefaultConfig()
	cfg.Reliability = c.Timer.Reliability
	if c.Timer.Name != "" {
		cfg.Name = c.Timer.Name
	}
	cfg.Logger = log
	return cfg
}

// MetricsConfig converts the metrics section, registering on reg.
func (c *Config) MetricsConfig(reg prometheus.Registerer) metrics.Config {
	return metrics.Config{
		Enabled:   c.Metrics.Enabled,
		Registry:  reg,
		Namespace: c.Metrics.Namespace,
	}
}

// Logger builds the logger described by the log section, writing to out.
func (c *Config) Logger(out io.Writer) zerolog.Logger {
	return logging.New(logging.Config{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		Output: out,
	})
}
