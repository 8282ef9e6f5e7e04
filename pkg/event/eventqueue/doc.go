/*
Package eventqueue provides a typed event queue drained by a single run loop.

Producers on any goroutine enqueue events; one goroutine calls Run and dispatches each
event, in FIFO order, to the handler registered for the event's dynamic type. Events
whose type has no handler are dropped.

Basic usage:

	type Resize struct{ W, H int }

	q := eventqueue.New(0) // unbounded
	defer q.Close()

	eventqueue.Handle(q, func(ev Resize) {
		layout(ev.W, ev.H)
	})

	go q.Run()
	q.Enqueue(Resize{W: 640, H: 480})

Capacity:

A queue created with a positive size rejects events once that many are waiting:
Enqueue returns false immediately instead of blocking. Handlers never hold the
queue's lock, so they may enqueue further events on the same queue.

Payloads:

Any value can be an event. Value and Shared wrap payloads when the handler should not
be keyed on the payload type directly, and Callback turns a function into an event
that runs itself:

	eventqueue.Handle(q, func(ev *eventqueue.Value[Config]) { apply(ev.Copy()) })
	q.Enqueue(eventqueue.NewValue(cfg))

	tick := q.Wrap(func() { redraw() }) // enqueues a Callback on each call
	t := timer.NewWithCallback(func() { tick() })

Run Loop:

Run is meant to have one caller at a time; a second concurrent Run returns at once.
Stop makes Run return after the current handler finished, and Run may be called again
later to resume. RunContext ties the loop to a context.

Panics:

A panic escaping a handler is logged with its stack and then propagates, terminating
the process.
*/
package eventqueue
