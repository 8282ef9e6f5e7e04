package threadpool

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/concur/internal/testutil"
	cerrors "github.com/vnykmshr/concur/pkg/common/errors"
	"github.com/vnykmshr/concur/pkg/metrics"
)

// gate blocks jobs until it is opened.
type gate struct {
	ch   chan struct{}
	once sync.Once
}

func newGate() *gate { return &gate{ch: make(chan struct{})} }

func (g *gate) wait() { <-g.ch }

func (g *gate) open() { g.once.Do(func() { close(g.ch) }) }

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		threads     int
		want        int
		expectPanic bool
	}{
		{"single thread", 1, 1, false},
		{"several threads", 4, 4, false},
		{"zero means gomaxprocs", 0, runtime.GOMAXPROCS(0), false},
		{"negative threads", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expectPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Error("expected panic")
					}
				}()
			}

			pool := New(tt.threads)
			defer pool.Close()
			testutil.AssertEqual(t, pool.ThreadCount(), tt.want)
		})
	}
}

func TestNewSafe(t *testing.T) {
	_, err := NewSafe(-3)
	testutil.AssertError(t, err)
	testutil.AssertTrue(t, errors.Is(err, cerrors.ErrInvalidConfiguration))

	pool, err := NewSafe(2)
	testutil.AssertNoError(t, err)
	defer pool.Close()
	testutil.AssertEqual(t, pool.ThreadCount(), 2)
}

func TestSingleThreadRunsInOrder(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 50; i++ {
		i := i
		pool.Enqueue(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	testutil.AssertEqual(t, len(order), 50)
	for i, v := range order {
		if v != i {
			t.Fatalf("job %d ran at position %d", v, i)
		}
	}
}

func TestQueueCountWithBlockedWorkers(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	g := newGate()
	var started, finished int32
	for i := 0; i < 4; i++ {
		pool.Enqueue(func() {
			atomic.AddInt32(&started, 1)
			g.wait()
			atomic.AddInt32(&finished, 1)
		})
	}

	testutil.WaitForInt32(t, &started, 2, time.Second)
	testutil.AssertEqual(t, pool.QueueCount(), 2)
	testutil.AssertEqual(t, pool.TotalJobCount(), 4)

	g.open()
	pool.Wait()

	testutil.AssertEqual(t, atomic.LoadInt32(&finished), int32(4))
	testutil.AssertEqual(t, pool.QueueCount(), 0)
	testutil.AssertEqual(t, pool.TotalJobCount(), 0)
}

func TestDequeueAll(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	g := newGate()
	var started, ran int32
	for i := 0; i < 4; i++ {
		pool.Enqueue(func() {
			atomic.AddInt32(&started, 1)
			g.wait()
			atomic.AddInt32(&ran, 1)
		})
	}
	testutil.WaitForInt32(t, &started, 2, time.Second)

	jobs := pool.DequeueAll()
	testutil.AssertEqual(t, len(jobs), 2)
	testutil.AssertEqual(t, pool.QueueCount(), 0)
	testutil.AssertEqual(t, pool.TotalJobCount(), 2)

	// Waiting now only covers the running jobs.
	g.open()
	testutil.AssertTrue(t, pool.WaitFor(time.Second))
	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(2))

	pool.EnqueueAll(jobs)
	pool.Wait()
	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(4))
}

func TestClear(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	g := newGate()
	var started, ran int32
	pool.Enqueue(func() {
		atomic.AddInt32(&started, 1)
		g.wait()
	})
	for i := 0; i < 5; i++ {
		pool.Enqueue(func() { atomic.AddInt32(&ran, 1) })
	}
	testutil.WaitForInt32(t, &started, 1, time.Second)

	pool.Clear()
	testutil.AssertEqual(t, pool.QueueCount(), 0)
	testutil.AssertEqual(t, pool.TotalJobCount(), 1)

	g.open()
	pool.Wait()
	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(0))
}

func TestWaitFor_Timeout(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	g := newGate()
	defer g.open()
	pool.Enqueue(g.wait)

	start := time.Now()
	testutil.AssertFalse(t, pool.WaitFor(50*time.Millisecond))
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("WaitFor returned after %v", elapsed)
	}

	g.open()
	testutil.AssertTrue(t, pool.WaitFor(time.Second))
}

func TestWaitFor_IdlePoolReturnsImmediately(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	testutil.AssertTrue(t, pool.WaitFor(0))
}

func TestWaitContext(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	g := newGate()
	defer g.open()
	pool.Enqueue(g.wait)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pool.WaitContext(ctx)
	testutil.AssertTrue(t, errors.Is(err, context.DeadlineExceeded))
	testutil.AssertTrue(t, errors.Is(err, cerrors.ErrTimeout))
	testutil.AssertTrue(t, cerrors.IsRetryable(err))

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	err = pool.WaitContext(cancelled)
	testutil.AssertTrue(t, errors.Is(err, context.Canceled))
	testutil.AssertFalse(t, errors.Is(err, cerrors.ErrTimeout))

	g.open()
	ctx2, cancel2 := testutil.WithTimeout(t)
	defer cancel2()
	testutil.AssertNoError(t, pool.WaitContext(ctx2))
}

func TestCloseDropsQueuedJobs(t *testing.T) {
	pool := New(1)

	g := newGate()
	var started, finished, dropped int32
	pool.Enqueue(func() {
		atomic.AddInt32(&started, 1)
		g.wait()
		atomic.AddInt32(&finished, 1)
	})
	for i := 0; i < 3; i++ {
		pool.Enqueue(func() { atomic.AddInt32(&dropped, 1) })
	}
	testutil.WaitForInt32(t, &started, 1, time.Second)

	done := pool.Shutdown()
	select {
	case <-done:
		t.Fatal("shutdown completed while a job was running")
	case <-time.After(20 * time.Millisecond):
	}

	g.open()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not complete")
	}

	testutil.AssertEqual(t, atomic.LoadInt32(&finished), int32(1))
	testutil.AssertEqual(t, atomic.LoadInt32(&dropped), int32(0))
}

func TestEnqueueAfterShutdownIsDiscarded(t *testing.T) {
	pool := New(2)
	pool.Close()

	var ran int32
	pool.Enqueue(func() { atomic.AddInt32(&ran, 1) })
	pool.EnqueueAll([]Job{func() { atomic.AddInt32(&ran, 1) }})

	testutil.AssertEqual(t, pool.QueueCount(), 0)
	testutil.AssertTrue(t, pool.WaitFor(0))
	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(0))
}

func TestShutdownIsIdempotent(t *testing.T) {
	pool := New(2)

	first := pool.Shutdown()
	second := pool.Shutdown()
	<-first
	<-second
	pool.Close()
}

func TestNilJobIgnored(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	pool.Enqueue(nil)
	pool.EnqueueAll([]Job{nil, nil})
	testutil.AssertEqual(t, pool.TotalJobCount(), 0)
}

func TestOnThreadCreate(t *testing.T) {
	var mu sync.Mutex
	var infos []ThreadInfo

	pool := NewWithConfig(Config{
		Threads: 5,
		Name:    "io",
		OnThreadCreate: func(info ThreadInfo) {
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
		},
	})
	defer pool.Close()

	// Called synchronously, so every worker is reported before the constructor returns.
	mu.Lock()
	defer mu.Unlock()
	testutil.AssertEqual(t, len(infos), 5)
	for i, info := range infos {
		testutil.AssertEqual(t, info.Index, i)
	}
	testutil.AssertEqual(t, infos[3].Name, "io-3")
}

func TestLockOSThread(t *testing.T) {
	pool := NewWithConfig(Config{Threads: 2, LockOSThread: true})
	defer pool.Close()

	var ran int32
	for i := 0; i < 10; i++ {
		pool.Enqueue(func() { atomic.AddInt32(&ran, 1) })
	}
	pool.Wait()
	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(10))
}

// goroutineTag returns the "goroutine N" header of the current stack.
func goroutineTag() string {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	if i := bytes.IndexByte(buf, '['); i > 0 {
		buf = buf[:i]
	}
	return string(bytes.TrimSpace(buf))
}

func TestOnThreadCreateRunsOnWorker(t *testing.T) {
	var mu sync.Mutex
	hookTags := make(map[string]bool)

	pool := NewWithConfig(Config{
		Threads:      2,
		LockOSThread: true,
		OnThreadCreate: func(ThreadInfo) {
			mu.Lock()
			hookTags[goroutineTag()] = true
			mu.Unlock()
		},
	})
	defer pool.Close()

	testutil.AssertFalse(t, hookTags[goroutineTag()])
	testutil.AssertEqual(t, len(hookTags), 2)

	// Both jobs must be in flight at once, so each worker runs one.
	var arrived sync.WaitGroup
	arrived.Add(2)
	jobTags := make(chan string, 2)
	for i := 0; i < 2; i++ {
		pool.Enqueue(func() {
			jobTags <- goroutineTag()
			arrived.Done()
			arrived.Wait()
		})
	}
	pool.Wait()
	close(jobTags)

	mu.Lock()
	defer mu.Unlock()
	for tag := range jobTags {
		testutil.AssertTrue(t, hookTags[tag])
	}
}

func TestJobHooks(t *testing.T) {
	var starts, completes int32
	pool := NewWithConfig(Config{
		Threads:       3,
		OnJobStart:    func(int) { atomic.AddInt32(&starts, 1) },
		OnJobComplete: func(int, time.Duration) { atomic.AddInt32(&completes, 1) },
	})
	defer pool.Close()

	for i := 0; i < 20; i++ {
		pool.Enqueue(func() {})
	}
	pool.Wait()

	testutil.AssertEqual(t, atomic.LoadInt32(&starts), int32(20))
	testutil.AssertEqual(t, atomic.LoadInt32(&completes), int32(20))
}

func TestEnqueueFromJob(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	var ran int32
	pool.Enqueue(func() {
		atomic.AddInt32(&ran, 1)
		pool.Enqueue(func() { atomic.AddInt32(&ran, 1) })
	})

	// The nested job is enqueued before the outer one finishes, so the
	// outstanding count never touches zero in between.
	pool.Wait()
	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(2))
}

func TestWrap(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	var ran int32
	fn := pool.Wrap(func() { atomic.AddInt32(&ran, 1) })
	fn()
	fn()
	fn()
	pool.Wait()

	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(3))

	w := AsWrapper(pool)
	w.Wrap(func() { atomic.AddInt32(&ran, 1) })()
	pool.Wait()
	testutil.AssertEqual(t, atomic.LoadInt32(&ran), int32(4))
}

func TestConcurrentEnqueue(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var ran int64
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				pool.Enqueue(func() { atomic.AddInt64(&ran, 1) })
			}
		}()
	}
	wg.Wait()
	pool.Wait()

	testutil.AssertEqual(t, atomic.LoadInt64(&ran), int64(2000))
}

func TestMetricsPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := NewWithConfigAndMetrics(Config{Threads: 1, Name: "metered"}, metrics.Config{
		Enabled:  true,
		Registry: reg,
	})
	defer pool.Close()
	testutil.AssertTrue(t, pool.MetricsEnabled())

	g := newGate()
	var started int32
	pool.Enqueue(func() {
		atomic.AddInt32(&started, 1)
		g.wait()
	})
	pool.Enqueue(func() {})
	pool.Enqueue(func() {})
	testutil.WaitForInt32(t, &started, 1, time.Second)

	jobs := pool.DequeueAll()
	testutil.AssertEqual(t, len(jobs), 2)

	g.open()
	pool.Wait()

	testutil.Eventually(t, func() bool {
		return promtest.ToFloat64(pool.registry.Load().JobsExecuted.WithLabelValues("metered")) == 1
	}, time.Second, 5*time.Millisecond)

	r := pool.registry.Load()
	testutil.AssertEqual(t, promtest.ToFloat64(r.JobsEnqueued.WithLabelValues("metered")), 3.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.JobsDiscarded.WithLabelValues("metered")), 2.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.PoolThreads.WithLabelValues("metered")), 1.0)

	pool.DisableMetrics()
	testutil.AssertFalse(t, pool.MetricsEnabled())
	pool.Enqueue(func() {})
	pool.Wait()
	testutil.AssertEqual(t, promtest.ToFloat64(r.JobsEnqueued.WithLabelValues("metered")), 3.0)
}
