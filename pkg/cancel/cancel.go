package cancel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	cerrors "github.com/vnykmshr/concur/pkg/common/errors"
)

// MemoryOrder names the ordering requested for a flag access. Go's atomics
// are sequentially consistent, so every order is served as SeqCst.
type MemoryOrder int

const (
	// SeqCst is the strongest ordering and the default.
	SeqCst MemoryOrder = iota
	// Relaxed requests atomicity only.
	Relaxed
	// Consume requests ordering of dependent reads after the load.
	Consume
	// Acquire orders later accesses after the load.
	Acquire
	// Release orders earlier accesses before the store.
	Release
	// AcqRel combines Acquire and Release.
	AcqRel
)

func (o MemoryOrder) String() string {
	switch o {
	case SeqCst:
		return "seq_cst"
	case Relaxed:
		return "relaxed"
	case Consume:
		return "consume"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case AcqRel:
		return "acq_rel"
	default:
		return "unknown"
	}
}

// flag is the state shared by a Source and all of its Tokens.
type flag struct {
	set  atomic.Bool
	once sync.Once
	done chan struct{}
}

func newFlag() *flag {
	return &flag{done: make(chan struct{})}
}

func (f *flag) cancel() {
	f.set.Store(true)
	f.once.Do(func() { close(f.done) })
}

// Source is the cancelling side of a flag.
type Source struct {
	f    *flag
	stop func() bool
}

// NewSource allocates a new, uncancelled flag.
func NewSource() *Source {
	s := &Source{f: newFlag()}
	// The cleanup must not reference s, only the flag.
	runtime.AddCleanup(s, func(f *flag) { f.cancel() }, s.f)
	return s
}

// NewSourceWithContext returns a Source that is also cancelled when ctx is done.
func NewSourceWithContext(ctx context.Context) *Source {
	s := NewSource()
	f := s.f
	s.stop = context.AfterFunc(ctx, f.cancel)
	return s
}

// Token returns a Token observing this Source's flag.
func (s *Source) Token() Token {
	return Token{f: s.f}
}

// Cancel sets the flag. It is idempotent and never resets the flag.
// Any MemoryOrder passed is accepted and served by a sequentially consistent store.
func (s *Source) Cancel(_ ...MemoryOrder) {
	s.f.cancel()
}

// IsCancelled reports whether Cancel has been called.
// Any MemoryOrder passed is served by a sequentially consistent load.
func (s *Source) IsCancelled(_ ...MemoryOrder) bool {
	return s.f.set.Load()
}

// Close cancels the Source and detaches it from any context it was bound to.
func (s *Source) Close() {
	if s.stop != nil {
		s.stop()
	}
	s.Cancel()
}

// Token is the observing side of a flag. The zero Token is never cancelled.
type Token struct {
	f *flag
}

// IsCancelled reports whether the owning Source has cancelled.
// Any MemoryOrder passed is served by a sequentially consistent load.
func (t Token) IsCancelled(_ ...MemoryOrder) bool {
	if t.f == nil {
		return false
	}
	return t.f.set.Load()
}

// Err returns ErrCancelled once the token is cancelled, nil before.
func (t Token) Err() error {
	if t.IsCancelled() {
		return cerrors.ErrCancelled
	}
	return nil
}

var never = make(chan struct{})

// Done returns a channel that is closed when the token is cancelled.
func (t Token) Done() <-chan struct{} {
	if t.f == nil {
		return never
	}
	return t.f.done
}
