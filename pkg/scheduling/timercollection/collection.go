package timercollection

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	cerrors "github.com/vnykmshr/concur/pkg/common/errors"
	"github.com/vnykmshr/concur/pkg/common/logging"
	"github.com/vnykmshr/concur/pkg/common/validation"
	"github.com/vnykmshr/concur/pkg/scheduling/threadpool"
	"github.com/vnykmshr/concur/pkg/scheduling/timer"
)

// maxIDLength bounds timer identifiers.
const maxIDLength = 255

var errNilCallback = cerrors.NewValidationError("timercollection", "callback", nil, "cannot be nil")

// Entry describes a timer registered in a Collection.
type Entry struct {
	ID       string
	Next     time.Time
	Interval time.Duration // Zero for single-shot and cron timers
	Cron     string        // Empty unless set with SetCronTimer
	Created  time.Time
}

// Collection multiplexes any number of named timers onto one timer goroutine.
type Collection interface {
	// SetTimer registers callback under id, replacing any timer with that id.
	// Interval semantics match timer.Timer.Start.
	SetTimer(id string, callback func(), delay, interval time.Duration) error

	// SetInterval is SetTimer(id, callback, interval, interval). The interval
	// must be positive.
	SetInterval(id string, callback func(), interval time.Duration) error

	// SetSingleshot is SetTimer(id, callback, delay, 0).
	SetSingleshot(id string, callback func(), delay time.Duration) error

	// SetCronTimer registers callback to fire on a cron schedule.
	// Both five-field and six-field (leading seconds) expressions are accepted,
	// as are descriptors such as "@hourly".
	SetCronTimer(id, spec string, callback func()) error

	// Cancel removes the timer with id and reports whether it existed.
	Cancel(id string) bool

	// CancelAll removes every timer.
	CancelAll()

	// List returns the registered timers ordered by next fire time.
	List() []Entry

	// SetReliability forwards to the underlying timer.
	SetReliability(margin time.Duration)

	// Close cancels every timer and stops the timer goroutine.
	Close()
}

// Config holds collection configuration.
type Config struct {
	// Name identifies the collection in logs. Defaults to "timercollection".
	Name string

	// Reliability is the underlying timer's margin. Zero means timer.DefaultReliability.
	Reliability time.Duration

	// OnThreadCreate is forwarded to the underlying timer.
	OnThreadCreate func(name string)

	// Pool, when set, runs callbacks instead of the timer goroutine.
	// The collection does not own the pool.
	Pool threadpool.Pool

	// Location is used to evaluate cron expressions. Defaults to time.Local.
	Location *time.Location

	// Logger receives lifecycle and diagnostic events. Nil disables logging.
	Logger *zerolog.Logger
}

type entry struct {
	id       string
	callback func()
	next     time.Time
	interval time.Duration
	spec     string
	schedule cron.Schedule
	created  time.Time
}

// collection implements Collection on top of a single timer.Timer that is
// always armed for the earliest pending entry.
type collection struct {
	timer    timer.Timer
	pool     threadpool.Pool
	location *time.Location
	parser   cron.Parser
	log      zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// New creates a collection with default configuration.
func New() Collection {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a collection with custom configuration.
// It panics if the configuration is invalid.
func NewWithConfig(cfg Config) Collection {
	if cfg.Name == "" {
		cfg.Name = "timercollection"
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	c := &collection{
		pool:     cfg.Pool,
		location: location,
		parser:   cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		log:      logging.Component(cfg.Logger, "timercollection", cfg.Name),
		entries:  make(map[string]*entry),
	}

	c.timer = timer.NewWithConfig(timer.Config{
		Name:           cfg.Name,
		Reliability:    cfg.Reliability,
		Callback:       c.fireDue,
		OnThreadCreate: cfg.OnThreadCreate,
		Logger:         cfg.Logger,
	})

	return c
}

func validateID(id string) error {
	if err := validation.ValidateNotEmpty("timercollection", "id", id); err != nil {
		return err
	}
	if len(id) > maxIDLength {
		return cerrors.NewValidationError("timercollection", "id", len(id),
			fmt.Sprintf("too long (max %d characters)", maxIDLength))
	}
	return nil
}

func (c *collection) SetTimer(id string, callback func(), delay, interval time.Duration) error {
	if err := validateID(id); err != nil {
		return err
	}
	if callback == nil {
		return errNilCallback
	}
	if delay < 0 {
		delay = 0
	}
	if interval < 0 {
		interval = 0
	}

	now := time.Now()
	return c.put(&entry{
		id:       id,
		callback: callback,
		next:     now.Add(delay),
		interval: interval,
		created:  now,
	})
}

func (c *collection) SetInterval(id string, callback func(), interval time.Duration) error {
	if err := validation.ValidatePositive("timercollection", "interval", interval); err != nil {
		return err
	}
	return c.SetTimer(id, callback, interval, interval)
}

func (c *collection) SetSingleshot(id string, callback func(), delay time.Duration) error {
	return c.SetTimer(id, callback, delay, 0)
}

func (c *collection) SetCronTimer(id, spec string, callback func()) error {
	if err := validateID(id); err != nil {
		return err
	}
	if callback == nil {
		return errNilCallback
	}
	if err := validation.ValidateNotEmpty("timercollection", "spec", spec); err != nil {
		return err
	}

	schedule, err := c.parser.Parse(spec)
	if err != nil {
		return cerrors.NewValidationError("timercollection", "spec", spec, err.Error()).
			WithHint("use five fields, six with leading seconds, or a descriptor like @hourly")
	}

	now := time.Now()
	return c.put(&entry{
		id:       id,
		callback: callback,
		next:     schedule.Next(now.In(c.location)),
		spec:     spec,
		schedule: schedule,
		created:  now,
	})
}

func (c *collection) put(e *entry) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return cerrors.NewOperationError("timercollection", "set", cerrors.ErrClosed).WithContext(e.id)
	}
	_, replaced := c.entries[e.id]
	c.entries[e.id] = e
	c.rearmLocked(time.Now())
	c.mu.Unlock()

	c.log.Debug().Str("id", e.id).Time("next", e.next).Bool("replaced", replaced).Msg("timer set")
	return nil
}

func (c *collection) Cancel(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	c.rearmLocked(time.Now())
	return true
}

func (c *collection) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.timer.Stop()
}

func (c *collection) List() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		list = append(list, Entry{
			ID:       e.id,
			Next:     e.next,
			Interval: e.interval,
			Cron:     e.spec,
			Created:  e.created,
		})
	}

	// Sort by next fire time
	sort.Slice(list, func(i, j int) bool {
		if list[i].Next.Equal(list[j].Next) {
			return list[i].ID < list[j].ID
		}
		return list[i].Next.Before(list[j].Next)
	})

	return list
}

func (c *collection) SetReliability(margin time.Duration) {
	c.timer.SetReliability(margin)
}

func (c *collection) Close() {
	c.mu.Lock()
	c.closed = true
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	c.timer.Close()
	c.log.Debug().Msg("timer collection closed")
}

// rearmLocked points the underlying timer at the earliest entry. c.mu must be held.
func (c *collection) rearmLocked(now time.Time) {
	var earliest *entry
	for _, e := range c.entries {
		if earliest == nil || e.next.Before(earliest.next) {
			earliest = e
		}
	}
	if earliest == nil {
		c.timer.Stop()
		return
	}
	c.timer.StartSingleshot(earliest.next.Sub(now))
}

// fireDue runs on the timer goroutine. It advances every due entry, re-arms
// the timer and then runs the due callbacks in fire-time order.
func (c *collection) fireDue() {
	now := time.Now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	var due []*entry
	for _, e := range c.entries {
		if e.next.After(now) {
			continue
		}
		due = append(due, &entry{id: e.id, callback: e.callback, next: e.next})

		switch {
		case e.interval > 0:
			e.next = e.next.Add(e.interval)
			if !e.next.After(now) {
				missed := now.Sub(e.next)/e.interval + 1
				e.next = e.next.Add(missed * e.interval)
			}
		case e.schedule != nil:
			e.next = e.schedule.Next(now.In(c.location))
		default:
			delete(c.entries, e.id)
		}
	}
	c.rearmLocked(now)
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		return due[i].next.Before(due[j].next)
	})

	for _, e := range due {
		if c.pool != nil {
			c.pool.Enqueue(e.callback)
			continue
		}
		c.run(e)
	}
}

func (c *collection) run(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			logging.Repanic(c.log.With().Str("id", e.id).Logger(), r, "timer callback panicked")
		}
	}()
	e.callback()
}
