// Package callbackqueue runs functions on the goroutine that drives the queue.
//
// It is an eventqueue.Queue restricted to eventqueue.Callback events, useful
// for funnelling work from many goroutines onto one owner goroutine:
//
//	cq := callbackqueue.New(0)
//	defer cq.Close()
//	go cq.Run()
//
//	cq.Enqueue(func() { state.apply(change) })
package callbackqueue

import (
	"context"

	cerrors "github.com/vnykmshr/concur/pkg/common/errors"
	"github.com/vnykmshr/concur/pkg/common/validation"
	"github.com/vnykmshr/concur/pkg/event/eventqueue"
	"github.com/vnykmshr/concur/pkg/scheduling/wrap"
)

// Queue executes enqueued functions in FIFO order on its run loop.
type Queue struct {
	queue eventqueue.Queue
}

// New creates a queue holding at most maxSize functions, 0 meaning unbounded.
// It panics if maxSize is negative.
func New(maxSize int) *Queue {
	return &Queue{queue: eventqueue.New(maxSize)}
}

// NewWithConfig creates a queue from an event queue configuration.
func NewWithConfig(config eventqueue.Config) *Queue {
	return &Queue{queue: eventqueue.NewWithConfig(config)}
}

// NewFromQueue uses q as the underlying queue. The Callback handler q had at
// construction is reinstated in case it was replaced. It panics if q is nil.
func NewFromQueue(q eventqueue.Queue) *Queue {
	if err := validation.ValidateNotNil("callbackqueue", "queue", q); err != nil {
		panic(err)
	}
	eventqueue.Handle(q, func(fn eventqueue.Callback) {
		if fn != nil {
			fn()
		}
	})
	return &Queue{queue: q}
}

// Enqueue adds fn without blocking and reports whether it was accepted.
func (cq *Queue) Enqueue(fn func()) bool {
	if fn == nil {
		return false
	}
	return cq.queue.Enqueue(eventqueue.Callback(fn))
}

// TryEnqueue is Enqueue returning the reason fn was rejected.
// See eventqueue.Queue.TryEnqueue.
func (cq *Queue) TryEnqueue(fn func()) error {
	if fn == nil {
		return cerrors.NewValidationError("callbackqueue", "fn", nil, "cannot be nil")
	}
	return cq.queue.TryEnqueue(eventqueue.Callback(fn))
}

// Run executes queued functions on the calling goroutine until Stop is called.
func (cq *Queue) Run() {
	cq.queue.Run()
}

// RunContext is Run that also returns when ctx is done.
func (cq *Queue) RunContext(ctx context.Context) error {
	return cq.queue.RunContext(ctx)
}

// Stop makes Run return after the current function finished.
func (cq *Queue) Stop() {
	cq.queue.Stop()
}

// IsRunning reports whether a Run loop is active.
func (cq *Queue) IsRunning() bool {
	return cq.queue.IsRunning()
}

// Len returns the number of queued functions.
func (cq *Queue) Len() int {
	return cq.queue.Len()
}

// Wrap returns a function that enqueues fn each time it is called.
func (cq *Queue) Wrap(fn func()) func() bool {
	return func() bool {
		return cq.Enqueue(fn)
	}
}

// Wrapper exposes the queue as a wrap.Wrapper.
func (cq *Queue) Wrapper() wrap.Wrapper {
	return eventqueue.AsWrapper(cq.queue)
}

// Close stops the queue and rejects further functions.
func (cq *Queue) Close() {
	cq.queue.Close()
}
