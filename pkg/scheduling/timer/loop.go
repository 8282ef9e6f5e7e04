package timer

import (
	"runtime"
	"time"

	"github.com/vnykmshr/concur/pkg/common/logging"
)

// loop is the timer's background goroutine.
func (t *timer) loop(started chan<- struct{}) {
	defer close(t.done)

	if t.config.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	if t.config.OnThreadCreate != nil {
		t.config.OnThreadCreate(t.config.Name)
	}
	close(started)

	sleeper := time.NewTimer(time.Hour)
	sleeper.Stop()
	defer sleeper.Stop()

	for {
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return
		}

		if !t.running {
			t.mu.Unlock()
			<-t.wake
			continue
		}

		now := time.Now()
		if now.Before(t.next) {
			wait := t.next.Sub(now) - t.reliability
			t.mu.Unlock()

			if wait <= 0 {
				// Inside the margin: re-check the clock instead of sleeping.
				runtime.Gosched()
				continue
			}

			sleeper.Reset(wait)
			select {
			case <-sleeper.C:
			case <-t.wake:
				sleeper.Stop()
			}
			continue
		}

		callback := t.callback
		if t.interval > 0 {
			t.next = t.next.Add(t.interval)
			if !t.next.After(now) {
				// Collapse ticks a slow callback overran onto the next grid point.
				missed := now.Sub(t.next)/t.interval + 1
				t.next = t.next.Add(missed * t.interval)
			}
		} else {
			t.running = false
		}
		t.mu.Unlock()

		if callback != nil {
			t.fire(callback)
		}
	}
}

// fire runs one callback. A panic is logged and re-raised.
func (t *timer) fire(callback func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Repanic(t.log, r, "timer callback panicked")
		}
	}()
	callback()
}
