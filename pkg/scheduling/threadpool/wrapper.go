package threadpool

import "github.com/vnykmshr/concur/pkg/scheduling/wrap"

// poolWrapper adapts a Pool to wrap.Wrapper.
type poolWrapper struct {
	pool Pool
}

// AsWrapper returns a wrap.Wrapper that routes wrapped jobs to p.
func AsWrapper(p Pool) wrap.Wrapper {
	return poolWrapper{pool: p}
}

func (w poolWrapper) Wrap(job func()) func() {
	return w.pool.Wrap(job)
}
