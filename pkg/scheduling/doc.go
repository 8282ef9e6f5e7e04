/*
Package scheduling groups the primitives that decide when and where work runs.

  - threadpool: Fixed worker pool with FIFO queue, drain and blocking wait
  - timer: One goroutine per timer firing a callback once or on a fixed grid
  - timercollection: Named interval, single-shot and cron timers sharing one timer
  - wrap: The Wrapper contract that lets callbacks be redirected to an executor

Thread Pool:

	pool := threadpool.New(4)
	defer pool.Close()

	pool.Enqueue(func() { work() })
	pool.Wait()

Timer:

	t := timer.NewWithCallback(func() { refresh() })
	defer t.Close()

	t.StartInterval(time.Second)

Timer Collection:

	tc := timercollection.New()
	defer tc.Close()

	tc.SetInterval("flush", flush, 5*time.Second)
	tc.SetCronTimer("rotate", "0 0 * * *", rotate)

Composition:

A timer runs its callback on its own goroutine, one fire at a time. To run ticks on a
pool instead, wrap the callback:

	t.SetCallback(pool.Wrap(refresh))

Every component here is safe for concurrent use and never holds a lock while user
code runs, so jobs and callbacks may call back into the component that runs them.
*/
package scheduling
