package eventqueue

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	cerrors "github.com/vnykmshr/concur/pkg/common/errors"
	"github.com/vnykmshr/concur/pkg/common/logging"
	"github.com/vnykmshr/concur/pkg/common/validation"
)

var errNilEvent = cerrors.NewValidationError("eventqueue", "event", nil, "cannot be nil")

// Handler processes one event. It receives the event value exactly as it was enqueued.
type Handler func(event any)

// Queue is a FIFO of events drained by a single run loop that dispatches each
// event to the handler registered for its dynamic type.
type Queue interface {
	// Enqueue appends event without blocking. It returns false if the queue
	// is at capacity, closed, or event is nil.
	Enqueue(event any) bool

	// TryEnqueue is Enqueue reporting why event was rejected: an
	// OperationError wrapping ErrCapacityExceeded or ErrClosed, or a
	// ValidationError for a nil event.
	TryEnqueue(event any) error

	// SetHandler registers h for events of type t, replacing any previous handler.
	// A nil h removes the registration.
	SetHandler(t reflect.Type, h Handler)

	// SetHandlers registers several handlers at once under a single lock.
	SetHandlers(handlers map[reflect.Type]Handler)

	// Run processes events on the calling goroutine until Stop is called.
	// It returns immediately if another Run is already active. After Stop, it
	// first waits for the previous loop to finish its current handler, so it
	// must not be called from a handler of the same queue.
	Run()

	// RunContext is Run that also stops when ctx is done, returning ctx.Err() in that case.
	RunContext(ctx context.Context) error

	// Stop makes Run return once the current handler finished.
	// A later Run resumes processing.
	Stop()

	// IsRunning reports whether a Run loop is active.
	IsRunning() bool

	// Len returns the number of queued events.
	Len() int

	// Cap returns the capacity, 0 meaning unbounded.
	Cap() int

	// Wrap returns a function that enqueues fn as a Callback event each time
	// it is called and reports whether it was accepted.
	Wrap(fn func()) func() bool

	// Close stops the queue and rejects further events. Queued events are kept
	// but will not be dispatched.
	Close()
}

// Config holds configuration options for creating an event queue.
type Config struct {
	// MaxSize bounds the number of queued events. Zero means unbounded.
	MaxSize int

	// Name identifies the queue in logs and metrics. Defaults to "eventqueue".
	Name string

	// OnDispatch is called by the run loop after each event was handled or dropped.
	OnDispatch func(eventType reflect.Type, handled bool, duration time.Duration)

	// Logger receives lifecycle and diagnostic events. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns an unbounded queue configuration.
func DefaultConfig() Config {
	return Config{Name: "eventqueue"}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateNonNegative("eventqueue", "max_size", c.MaxSize)
}

// eventQueue implements the Queue interface.
type eventQueue struct {
	config Config
	log    zerolog.Logger

	mu       sync.Mutex
	ready    *sync.Cond
	events   []any
	handlers map[reflect.Type]Handler
	running  bool // stop not requested
	active   bool // a Run loop exists; owned by Run
	closed   bool

	dropLog rate.Sometimes
}

// New creates an event queue holding at most maxSize events, 0 meaning unbounded.
// It panics if maxSize is negative.
func New(maxSize int) Queue {
	cfg := DefaultConfig()
	cfg.MaxSize = maxSize
	return NewWithConfig(cfg)
}

// NewSafe is New returning an error instead of panicking.
func NewSafe(maxSize int) (Queue, error) {
	cfg := DefaultConfig()
	cfg.MaxSize = maxSize
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig creates an event queue. It panics if the configuration is invalid.
func NewWithConfig(config Config) Queue {
	if err := config.Validate(); err != nil {
		panic(err.Error())
	}
	if config.Name == "" {
		config.Name = "eventqueue"
	}

	q := &eventQueue{
		config:   config,
		log:      logging.Component(config.Logger, "eventqueue", config.Name),
		handlers: make(map[reflect.Type]Handler),
		dropLog:  rate.Sometimes{Interval: time.Second},
	}
	q.ready = sync.NewCond(&q.mu)
	q.handlers[callbackType] = runCallback

	return q
}

func (q *eventQueue) Enqueue(event any) bool {
	return q.TryEnqueue(event) == nil
}

func (q *eventQueue) TryEnqueue(event any) error {
	if event == nil {
		return errNilEvent
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return cerrors.NewOperationError("eventqueue", "enqueue", cerrors.ErrClosed).WithContext(q.config.Name)
	}
	if q.config.MaxSize > 0 && len(q.events) >= q.config.MaxSize {
		q.mu.Unlock()
		return cerrors.NewOperationError("eventqueue", "enqueue", cerrors.ErrCapacityExceeded).
			WithContext(fmt.Sprintf("%s holds %d events", q.config.Name, q.config.MaxSize))
	}
	q.events = append(q.events, event)
	q.mu.Unlock()

	q.ready.Signal()
	return nil
}

func (q *eventQueue) SetHandler(t reflect.Type, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.setHandlerLocked(t, h)
}

func (q *eventQueue) SetHandlers(handlers map[reflect.Type]Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for t, h := range handlers {
		q.setHandlerLocked(t, h)
	}
}

func (q *eventQueue) setHandlerLocked(t reflect.Type, h Handler) {
	if h == nil {
		delete(q.handlers, t)
		return
	}
	q.handlers[t] = h
}

func (q *eventQueue) Run() {
	q.mu.Lock()
	for q.active && !q.running && !q.closed {
		// A stopped loop is still inside its handler.
		q.ready.Wait()
	}
	if q.active || q.closed {
		q.mu.Unlock()
		return
	}
	q.active = true
	q.running = true
	q.mu.Unlock()

	q.log.Debug().Msg("event loop started")
	defer func() {
		q.mu.Lock()
		q.active = false
		q.mu.Unlock()
		q.ready.Broadcast()
		q.log.Debug().Msg("event loop stopped")
	}()

	for {
		event, handler, ok := q.next()
		if !ok {
			return
		}
		q.dispatch(event, handler)
	}
}

func (q *eventQueue) RunContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, q.Stop)
	defer stop()

	q.Run()
	return ctx.Err()
}

func (q *eventQueue) Stop() {
	q.mu.Lock()
	q.running = false
	q.mu.Unlock()

	q.ready.Broadcast()
}

func (q *eventQueue) IsRunning() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *eventQueue) Cap() int {
	return q.config.MaxSize
}

func (q *eventQueue) Wrap(fn func()) func() bool {
	return func() bool {
		return q.Enqueue(Callback(fn))
	}
}

func (q *eventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.running = false
	q.mu.Unlock()

	q.ready.Broadcast()
}

// next blocks until an event is available or the loop is stopped, and
// returns the head event with the handler registered for its type.
func (q *eventQueue) next() (any, Handler, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.running && len(q.events) == 0 {
		q.ready.Wait()
	}
	if !q.running {
		return nil, nil, false
	}

	event := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]

	return event, q.handlers[reflect.TypeOf(event)], true
}

// dispatch invokes handler outside the lock. Events without a handler are dropped.
func (q *eventQueue) dispatch(event any, handler Handler) {
	t := reflect.TypeOf(event)

	if handler == nil {
		q.dropLog.Do(func() {
			q.log.Debug().Stringer("type", t).Msg("no handler registered, event dropped")
		})
		if q.config.OnDispatch != nil {
			q.config.OnDispatch(t, false, 0)
		}
		return
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logging.Repanic(q.log.With().Stringer("type", t).Logger(), r, "event handler panicked")
		}
		if q.config.OnDispatch != nil {
			q.config.OnDispatch(t, true, time.Since(start))
		}
	}()

	handler(event)
}

// Handle registers fn for events of type T on q.
func Handle[T any](q Queue, fn func(T)) {
	q.SetHandler(reflect.TypeFor[T](), func(event any) {
		fn(event.(T))
	})
}
