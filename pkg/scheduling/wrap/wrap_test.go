package wrap

import (
	"runtime"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/vnykmshr/concur/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// goid returns an identifier unique to the calling goroutine's stack header.
func goid() string {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	for i, b := range buf {
		if b == '[' {
			return string(buf[:i])
		}
	}
	return string(buf)
}

func TestGo_RunsOnAnotherGoroutine(t *testing.T) {
	caller := goid()

	var wg sync.WaitGroup
	var callee string
	wg.Add(1)
	fn := Go.Wrap(func() {
		defer wg.Done()
		callee = goid()
	})

	fn()
	wg.Wait()

	testutil.AssertNotEqual(t, callee, caller)
}

func TestInline_RunsOnCaller(t *testing.T) {
	caller := goid()
	var callee string
	Inline.Wrap(func() { callee = goid() })()
	testutil.AssertEqual(t, callee, caller)
}

func TestFunc_EachCallSubmits(t *testing.T) {
	var submitted int
	w := Func(func(job func()) func() {
		return func() {
			submitted++
			job()
		}
	})

	var ran int
	fn := w.Wrap(func() { ran++ })
	fn()
	fn()
	fn()

	testutil.AssertEqual(t, submitted, 3)
	testutil.AssertEqual(t, ran, 3)
}
