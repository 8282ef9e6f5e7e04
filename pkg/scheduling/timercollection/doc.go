/*
Package timercollection multiplexes many named timers onto a single timer goroutine.

A Collection keeps one timer.Timer armed for whichever registered entry is due first.
When it fires, every due entry is advanced and its callback runs, in fire-time order,
either on the timer goroutine or on a thread pool supplied through Config.Pool.

Basic usage:

	tc := timercollection.New()
	defer tc.Close()

	tc.SetInterval("heartbeat", sendHeartbeat, 5*time.Second)
	tc.SetSingleshot("warmup", warmCaches, 100*time.Millisecond)
	tc.SetCronTimer("report", "0 9 * * MON-FRI", sendReport)

	tc.Cancel("heartbeat")

Setting an id that already exists replaces the old timer. Interval entries follow the
same fixed grid as timer.Timer, collapsing ticks missed by slow callbacks.

Cron expressions are parsed with github.com/robfig/cron/v3 and evaluated in
Config.Location. An optional leading seconds field and descriptors such as "@hourly"
are accepted.

Callbacks run one at a time unless Config.Pool is set, so a slow callback delays every
other timer in the same collection.
*/
package timercollection
