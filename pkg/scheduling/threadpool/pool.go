package threadpool

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vnykmshr/concur/pkg/common/logging"
	"github.com/vnykmshr/concur/pkg/common/validation"
)

// Job is a zero-argument unit of work. A panic escaping a Job is fatal.
type Job func()

// ThreadInfo describes a worker thread at creation time.
type ThreadInfo struct {
	// Index is the worker's position in the pool, starting at 0.
	Index int

	// Name is "<pool name>-<index>".
	Name string
}

// Pool represents a fixed set of worker threads consuming a shared FIFO job queue.
type Pool interface {
	// Enqueue appends a job to the tail of the queue and wakes one idle worker.
	// Jobs enqueued after shutdown are discarded.
	Enqueue(job Job)

	// EnqueueAll appends jobs in order and wakes all workers.
	EnqueueAll(jobs []Job)

	// QueueCount returns the number of jobs that have not started yet.
	QueueCount() int

	// TotalJobCount returns queued plus currently executing jobs.
	TotalJobCount() int

	// ThreadCount returns the number of workers, fixed at construction.
	ThreadCount() int

	// Clear discards all jobs that have not started. Running jobs are unaffected.
	Clear()

	// DequeueAll removes and returns every job that has not started, in queue order.
	DequeueAll() []Job

	// Wait blocks until TotalJobCount reaches zero.
	// Calling it from inside a job of the same pool never returns.
	Wait()

	// WaitFor is Wait bounded by timeout. It reports whether the count reached zero.
	WaitFor(timeout time.Duration) bool

	// WaitContext is Wait bounded by ctx.
	WaitContext(ctx context.Context) error

	// Wrap returns a function that enqueues job on this pool each time it is called.
	// The pool must outlive every call of the returned function.
	Wrap(job Job) func()

	// Shutdown stops the workers without blocking. Queued jobs are discarded,
	// running jobs finish. The returned channel closes once every worker exited.
	Shutdown() <-chan struct{}

	// Close is Shutdown followed by waiting for the workers to exit.
	// Calling it from inside a job of the same pool never returns.
	Close()
}

// Config holds configuration options for creating a thread pool.
type Config struct {
	// Threads is the number of workers.
	// Zero means runtime.GOMAXPROCS(0), floored at 1.
	Threads int

	// Name identifies the pool in logs, metrics and ThreadInfo. Defaults to "threadpool".
	Name string

	// OnThreadCreate is called once per worker on the worker's own goroutine,
	// after LockOSThread took effect. Calls happen in index order and all of
	// them complete before the constructor returns.
	OnThreadCreate func(info ThreadInfo)

	// LockOSThread wires each worker goroutine to its own OS thread.
	LockOSThread bool

	// OnJobStart is called by a worker right before it runs a job.
	OnJobStart func(workerIndex int)

	// OnJobComplete is called by a worker after a job returned.
	OnJobComplete func(workerIndex int, duration time.Duration)

	// Logger receives lifecycle and diagnostic events. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration sized to the available parallelism.
func DefaultConfig() Config {
	return Config{Name: "threadpool"}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateNonNegative("threadpool", "threads", c.Threads)
}

// threadPool implements the Pool interface.
type threadPool struct {
	config  Config
	threads int
	log     zerolog.Logger

	mu        sync.Mutex
	available *sync.Cond
	jobs      []Job
	executing int
	running   bool

	// idle is closed whenever the outstanding count is zero and replaced
	// by a fresh channel when it becomes positive again.
	idle       chan struct{}
	idleClosed bool

	workerWg     sync.WaitGroup
	shutdownOnce sync.Once
	done         chan struct{}

	dropLog rate.Sometimes
}

// New creates a new thread pool with the specified number of threads.
// It panics if threads is negative.
func New(threads int) Pool {
	cfg := DefaultConfig()
	cfg.Threads = threads
	return NewWithConfig(cfg)
}

// NewSafe is New returning an error instead of panicking.
func NewSafe(threads int) (Pool, error) {
	cfg := DefaultConfig()
	cfg.Threads = threads
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig creates a new thread pool with the specified configuration.
func NewWithConfig(config Config) Pool {
	if err := config.Validate(); err != nil {
		panic(err.Error())
	}
	if config.Name == "" {
		config.Name = "threadpool"
	}

	threads := config.Threads
	if threads == 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if threads < 1 {
		threads = 1
	}

	idle := make(chan struct{})
	close(idle)

	pool := &threadPool{
		config:     config,
		threads:    threads,
		log:        logging.Component(config.Logger, "threadpool", config.Name),
		running:    true,
		idle:       idle,
		idleClosed: true,
		done:       make(chan struct{}),
		dropLog:    rate.Sometimes{Interval: time.Second},
	}
	pool.available = sync.NewCond(&pool.mu)

	for i := 0; i < threads; i++ {
		started := make(chan struct{})
		pool.workerWg.Add(1)
		go pool.worker(i, started)
		<-started
	}

	pool.log.Debug().Int("threads", threads).Msg("thread pool started")
	return pool
}
