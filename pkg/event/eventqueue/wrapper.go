package eventqueue

import "github.com/vnykmshr/concur/pkg/scheduling/wrap"

// queueWrapper adapts a Queue to wrap.Wrapper.
type queueWrapper struct {
	queue Queue
}

// AsWrapper returns a wrap.Wrapper that forwards wrapped jobs to q's run loop.
// Jobs rejected because the queue is full are dropped.
func AsWrapper(q Queue) wrap.Wrapper {
	return queueWrapper{queue: q}
}

func (w queueWrapper) Wrap(job func()) func() {
	enqueue := w.queue.Wrap(job)
	return func() {
		enqueue()
	}
}
