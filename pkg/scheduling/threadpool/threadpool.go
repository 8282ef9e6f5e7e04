package threadpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	cerrors "github.com/vnykmshr/concur/pkg/common/errors"
	"github.com/vnykmshr/concur/pkg/common/logging"
)

// Enqueue adds a job to the tail of the queue and wakes one idle worker.
func (p *threadPool) Enqueue(job Job) {
	if job == nil {
		return
	}

	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		p.logDiscard(1)
		return
	}
	p.jobs = append(p.jobs, job)
	p.updateIdleLocked()
	p.mu.Unlock()

	p.available.Signal()
}

// EnqueueAll adds jobs in order and wakes every worker.
func (p *threadPool) EnqueueAll(jobs []Job) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		p.logDiscard(len(jobs))
		return
	}
	added := 0
	for _, job := range jobs {
		if job != nil {
			p.jobs = append(p.jobs, job)
			added++
		}
	}
	p.updateIdleLocked()
	p.mu.Unlock()

	if added > 0 {
		p.available.Broadcast()
	}
}

// QueueCount returns the number of jobs waiting to start.
func (p *threadPool) QueueCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// TotalJobCount returns queued plus executing jobs.
func (p *threadPool) TotalJobCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs) + p.executing
}

// ThreadCount returns the number of workers in the pool.
func (p *threadPool) ThreadCount() int {
	return p.threads
}

// Clear discards the jobs that have not started.
func (p *threadPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = nil
	p.updateIdleLocked()
}

// DequeueAll removes and returns the jobs that have not started.
func (p *threadPool) DequeueAll() []Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	jobs := p.jobs
	p.jobs = nil
	p.updateIdleLocked()
	return jobs
}

// Wait blocks until no job is queued or executing.
func (p *threadPool) Wait() {
	<-p.idleCh()
}

// WaitFor blocks until no job is queued or executing, or timeout elapses.
func (p *threadPool) WaitFor(timeout time.Duration) bool {
	ch := p.idleCh()
	select {
	case <-ch:
		return true
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	}
}

// WaitContext blocks until no job is queued or executing, or ctx is done.
// A passed deadline is reported as ErrTimeout.
func (p *threadPool) WaitContext(ctx context.Context) error {
	select {
	case <-p.idleCh():
		return nil
	case <-ctx.Done():
		cause := ctx.Err()
		if errors.Is(cause, context.DeadlineExceeded) {
			cause = fmt.Errorf("%w: %w", cerrors.ErrTimeout, cause)
		}
		return cerrors.NewOperationError("threadpool", "wait", cause).WithContext(p.config.Name)
	}
}

// Wrap returns a function that submits job to this pool when called.
func (p *threadPool) Wrap(job Job) func() {
	return func() {
		p.Enqueue(job)
	}
}

// Shutdown initiates shutdown of the pool.
func (p *threadPool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.running = false
		discarded := len(p.jobs)
		p.jobs = nil
		p.updateIdleLocked()
		p.mu.Unlock()

		// Wake every worker so each observes running == false.
		p.available.Broadcast()

		p.log.Debug().Int("discarded", discarded).Msg("thread pool shutting down")

		go func() {
			p.workerWg.Wait()
			p.log.Debug().Msg("thread pool stopped")
			close(p.done)
		}()
	})

	return p.done
}

// Close shuts the pool down and waits for every worker to exit.
func (p *threadPool) Close() {
	<-p.Shutdown()
}

// idleCh returns the channel that is closed while the outstanding count is zero.
func (p *threadPool) idleCh() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle
}

// updateIdleLocked keeps idle in sync with the outstanding count. p.mu must be held.
func (p *threadPool) updateIdleLocked() {
	outstanding := len(p.jobs) + p.executing
	switch {
	case outstanding == 0 && !p.idleClosed:
		close(p.idle)
		p.idleClosed = true
	case outstanding > 0 && p.idleClosed:
		p.idle = make(chan struct{})
		p.idleClosed = false
	}
}

func (p *threadPool) logDiscard(n int) {
	p.dropLog.Do(func() {
		p.log.Warn().Int("jobs", n).Msg("enqueue after shutdown, jobs discarded")
	})
}

// worker is the main loop for a worker thread.
func (p *threadPool) worker(index int, started chan<- struct{}) {
	defer p.workerWg.Done()

	if p.config.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	if p.config.OnThreadCreate != nil {
		p.config.OnThreadCreate(ThreadInfo{
			Index: index,
			Name:  fmt.Sprintf("%s-%d", p.config.Name, index),
		})
	}
	close(started)

	for {
		job, ok := p.next()
		if !ok {
			return
		}
		p.execute(index, job)
	}
}

// next blocks until a job is available or the pool stops running.
func (p *threadPool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.running && len(p.jobs) == 0 {
		p.available.Wait()
	}
	if !p.running {
		return nil, false
	}

	job := p.jobs[0]
	p.jobs[0] = nil
	p.jobs = p.jobs[1:]
	p.executing++
	return job, true
}

// execute runs a single job outside the lock and accounts for its completion.
func (p *threadPool) execute(index int, job Job) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logging.Repanic(p.log, r, "job panicked")
		}

		if p.config.OnJobComplete != nil {
			p.config.OnJobComplete(index, time.Since(start))
		}

		p.mu.Lock()
		p.executing--
		p.updateIdleLocked()
		p.mu.Unlock()
	}()

	if p.config.OnJobStart != nil {
		p.config.OnJobStart(index)
	}

	job()
}
