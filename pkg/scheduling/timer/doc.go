/*
Package timer provides a recurring or single-shot timer driven by one background goroutine.

Each Timer owns a goroutine for its whole lifetime. Start, Stop and SetCallback only change
the state that goroutine reads between fires, so they are cheap and may be called from any
goroutine, including from the timer's own callback.

Basic usage:

	t := timer.NewWithCallback(func() {
		fmt.Println("tick")
	})
	defer t.Close()

	t.StartInterval(200 * time.Millisecond)   // fire every 200ms, first after 200ms
	t.Start(0, 200*time.Millisecond)           // fire now, then every 200ms
	t.StartSingleshot(time.Second)             // fire once after one second

Schedule:

Interval fires follow a fixed grid anchored at the first fire time, so a callback that takes
50ms does not push later fires back by 50ms. When a callback overruns one or more whole
intervals the skipped ticks are not replayed: the timer fires once as soon as it notices,
then resumes on the grid.

At most one callback runs at a time. A callback that must overlap with the next fire should
hand its work to a thread pool or event queue:

	t.SetCallback(pool.Wrap(refresh))

Reliability:

Go timers may wake late under load. SetReliability sets a margin before each fire during
which the goroutine stops sleeping and re-checks the clock instead, trading CPU for accuracy:

	t.SetReliability(0)                      // one timed sleep per fire
	t.SetReliability(2 * time.Millisecond)   // spin for the last 2ms

The margin is clamped to [0, MaxReliability] and applies from the next wait.

Stopping:

Stop makes the timer idle and keeps the goroutine; a later Start resumes firing.
Close stops the timer for good and waits for the goroutine to exit.

Panics:

A panic escaping the callback is logged with its stack and then propagates, terminating
the process.
*/
package timer
