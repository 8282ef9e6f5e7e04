package timer

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/concur/pkg/common/logging"
	"github.com/vnykmshr/concur/pkg/common/validation"
)

const (
	// DefaultReliability is the lead time used when none is configured.
	DefaultReliability = time.Millisecond

	// MaxReliability bounds SetReliability.
	MaxReliability = time.Second
)

// Timer fires a replaceable callback once or on a repeating schedule from a
// single background goroutine owned by the instance.
type Timer interface {
	// Start schedules the first fire after delay. With interval > 0 the timer
	// refires on the grid delay, delay+interval, delay+2*interval and so on;
	// ticks missed by a slow callback are collapsed into one immediate fire.
	// With interval == 0 the timer fires once and goes idle.
	Start(delay, interval time.Duration)

	// StartInterval is Start(interval, interval).
	StartInterval(interval time.Duration)

	// StartSingleshot is Start(delay, 0).
	StartSingleshot(delay time.Duration)

	// SetCallback replaces the callback. A fire already in progress keeps
	// the callback it started with.
	SetCallback(callback func())

	// SetReliability sets how long before each fire the timer stops sleeping
	// and starts re-checking the clock. It is clamped to [0, MaxReliability].
	SetReliability(margin time.Duration)

	// Reliability returns the current margin.
	Reliability() time.Duration

	// Stop makes the timer idle. The background goroutine keeps running and
	// a later Start resumes firing.
	Stop()

	// IsRunning reports whether a fire is scheduled.
	IsRunning() bool

	// Close stops the timer and waits for its background goroutine to exit.
	// Calling it from the timer's own callback never returns.
	Close()
}

// Config holds configuration options for creating a timer.
type Config struct {
	// Name identifies the timer in logs and metrics. Defaults to "timer".
	Name string

	// Reliability is the initial margin. Zero means DefaultReliability;
	// use SetReliability(0) for a single timed wait per fire.
	Reliability time.Duration

	// Callback is the initial callback. It may be nil and set later.
	Callback func()

	// OnThreadCreate is called with the timer's name on the timer goroutine,
	// after LockOSThread took effect and before the constructor returns.
	OnThreadCreate func(name string)

	// LockOSThread wires the timer goroutine to its own OS thread.
	LockOSThread bool

	// Logger receives lifecycle and diagnostic events. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default timer configuration.
func DefaultConfig() Config {
	return Config{
		Name:        "timer",
		Reliability: DefaultReliability,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateDurationRange("timer", "reliability", c.Reliability, 0, MaxReliability)
}

// timer implements the Timer interface.
type timer struct {
	config Config
	log    zerolog.Logger

	mu          sync.Mutex
	callback    func()
	interval    time.Duration
	next        time.Time
	reliability time.Duration
	running     bool
	closed      bool

	// wake carries state changes to the background goroutine.
	wake chan struct{}
	done chan struct{}

	closeOnce sync.Once
}

// New creates an idle timer without a callback.
func New() Timer {
	return NewWithConfig(DefaultConfig())
}

// NewWithCallback creates an idle timer that will invoke callback.
func NewWithCallback(callback func()) Timer {
	cfg := DefaultConfig()
	cfg.Callback = callback
	return NewWithConfig(cfg)
}

// NewSafe is NewWithConfig returning an error instead of panicking.
func NewSafe(config Config) (Timer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewWithConfig(config), nil
}

// NewWithConfig creates an idle timer. It panics if the configuration is invalid.
func NewWithConfig(config Config) Timer {
	if err := config.Validate(); err != nil {
		panic(err.Error())
	}
	if config.Name == "" {
		config.Name = "timer"
	}
	if config.Reliability == 0 {
		config.Reliability = DefaultReliability
	}

	t := &timer{
		config:      config,
		log:         logging.Component(config.Logger, "timer", config.Name),
		callback:    config.Callback,
		reliability: config.Reliability,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}

	started := make(chan struct{})
	go t.loop(started)
	<-started

	return t
}

func (t *timer) Start(delay, interval time.Duration) {
	if delay < 0 {
		delay = 0
	}
	if interval < 0 {
		interval = 0
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.log.Warn().Msg("start on closed timer ignored")
		return
	}
	t.interval = interval
	t.next = time.Now().Add(delay)
	t.running = true
	t.mu.Unlock()

	t.log.Debug().Dur("delay", delay).Dur("interval", interval).Msg("timer started")
	t.notify()
}

func (t *timer) StartInterval(interval time.Duration) {
	t.Start(interval, interval)
}

func (t *timer) StartSingleshot(delay time.Duration) {
	t.Start(delay, 0)
}

func (t *timer) SetCallback(callback func()) {
	t.mu.Lock()
	t.callback = callback
	t.mu.Unlock()
}

func (t *timer) SetReliability(margin time.Duration) {
	margin = max(0, min(margin, MaxReliability))

	t.mu.Lock()
	t.reliability = margin
	t.mu.Unlock()

	t.notify()
}

func (t *timer) Reliability() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reliability
}

func (t *timer) Stop() {
	t.mu.Lock()
	wasRunning := t.running
	t.running = false
	t.mu.Unlock()

	if wasRunning {
		t.log.Debug().Msg("timer stopped")
	}
	t.notify()
}

func (t *timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *timer) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.running = false
		t.closed = true
		t.mu.Unlock()
		t.notify()
	})
	<-t.done
}

// notify wakes the background goroutine without blocking.
func (t *timer) notify() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}
