/*
Package cancel provides a one-way, shareable cancellation flag for cooperative abort
of long-running work.

A Source owns the authority to cancel. Any number of Tokens obtained from it observe
the same flag; once the Source cancels, every Token reports cancellation on every
subsequent read, including Tokens handed out after the call.

Basic usage:

	src := cancel.NewSource()
	defer src.Close()

	pool.Enqueue(func() {
		tok := src.Token()
		for chunk := range chunks {
			if tok.IsCancelled() {
				return
			}
			process(chunk)
		}
	})

	// later, from any goroutine
	src.Cancel()

Tokens are small values and are safe to copy. Closing a Source cancels it, and a
Source that becomes unreachable without being closed is cancelled by the runtime,
so work holding a Token never waits on a canceller that no longer exists.

Memory ordering:

Cancel and IsCancelled accept an optional MemoryOrder for callers porting code that
tunes ordering per access. Go's sync/atomic operations are sequentially consistent,
which satisfies every weaker order, so the argument never weakens the guarantee.

Select-based waiting:

Token.Done returns a channel closed on cancellation, which composes with select and
with context-aware code:

	select {
	case <-tok.Done():
		return tok.Err()
	case item := <-work:
		handle(item)
	}
*/
package cancel
