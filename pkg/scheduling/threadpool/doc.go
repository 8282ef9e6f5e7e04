/*
Package threadpool provides a fixed-size pool of worker threads draining a shared FIFO job queue.

A pool starts its workers at construction and keeps them for its whole lifetime. Jobs are
plain func() values; they are started in the order they were enqueued, and with a single
worker they also complete in that order.

Basic usage:

	pool := threadpool.New(4)
	defer pool.Close()

	pool.Enqueue(func() {
		// Do work
	})

	pool.Wait() // blocks until no job is queued or running

Sizing:

Passing 0 threads sizes the pool to runtime.GOMAXPROCS(0), never less than one worker.
Negative counts are rejected: New and NewWithConfig panic, NewSafe returns an error
that wraps errors.ErrInvalidConfiguration.

Queue Management:

Jobs that have not started can be inspected and removed:

	pending := pool.QueueCount()     // waiting jobs
	total := pool.TotalJobCount()    // waiting plus running jobs
	jobs := pool.DequeueAll()        // take the waiting jobs back, in order
	pool.Clear()                     // or drop them

Running jobs are never interrupted. TotalJobCount only falls to zero once every
running job returned.

Waiting:

Wait blocks until TotalJobCount is zero. WaitFor and WaitContext bound the wait:

	if !pool.WaitFor(time.Second) {
		log.Println("jobs still outstanding")
	}

A job must not wait on its own pool; it would wait for itself.

Shutdown:

Shutdown stops the pool without blocking and returns a channel that closes once every
worker exited. Jobs still queued are discarded, jobs already running finish. Close is
Shutdown followed by a receive on that channel. Jobs enqueued after shutdown are
discarded and reported through the logger.

Configuration Options:

	pool := threadpool.NewWithConfig(threadpool.Config{
		Threads: 8,
		Name:    "io",
		OnThreadCreate: func(info threadpool.ThreadInfo) {
			log.Printf("started %s", info.Name)
		},
		LockOSThread: true,
		Logger:       &logger,
	})

OnThreadCreate runs synchronously for each worker, in index order, before the constructor
returns. LockOSThread pins every worker goroutine to its own OS thread, which is useful when
jobs call into thread-affine C libraries.

Wrapping:

Wrap turns a job into a function that submits the job each time it is invoked. It is the
building block for handing callbacks to code that should not know about the pool:

	tick := pool.Wrap(func() { refresh() })
	t := timer.NewWithCallback(tick)

AsWrapper exposes the same capability through wrap.Wrapper.

Panics:

A panic escaping a job is logged with its stack and then propagates, terminating the
process. Jobs that can fail should handle their own errors.

Metrics:

NewWithMetrics and NewWithConfigAndMetrics return a MetricsPool that records queue depth,
enqueued, executed and discarded jobs, and job durations in Prometheus.
*/
package threadpool
