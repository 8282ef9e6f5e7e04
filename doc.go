/*
Package concur provides in-process concurrency primitives for Go applications.

Scheduling (pkg/scheduling):
  - threadpool: Fixed set of workers draining a FIFO job queue, with drain and wait
  - timer: Single-shot and interval timer with adjustable firing accuracy
  - timercollection: Many named, interval and cron timers on one goroutine
  - wrap: Executor contract shared by pools and queues

Events (pkg/event):
  - eventqueue: Bounded or unbounded queue dispatching events by dynamic type
  - callbackqueue: Queue of functions run on the goroutine that drives it

Cancellation (pkg/cancel):
  - Source and Token: one-way, fan-out cooperative cancellation flag

Support:
  - metrics: Prometheus instrumentation shared by every primitive
  - config: YAML configuration with hot reload

Example usage:

	import (
		"github.com/vnykmshr/concur/pkg/cancel"
		"github.com/vnykmshr/concur/pkg/scheduling/threadpool"
		"github.com/vnykmshr/concur/pkg/scheduling/timer"
	)

	pool := threadpool.New(0) // one worker per GOMAXPROCS
	defer pool.Close()

	src := cancel.NewSource()
	tok := src.Token()

	t := timer.NewWithCallback(pool.Wrap(func() {
		if !tok.IsCancelled() {
			poll()
		}
	}))
	defer t.Close()
	t.StartInterval(time.Second)

A panic escaping a job, handler or timer callback is logged and then terminates the
process; none of the primitives recover from it.
*/
package concur
