// Package wrap defines the executor contract shared by the concur primitives.
//
// A Wrapper turns a job into a function that, when called, hands the job to
// some executor instead of running it inline. Thread pools and event queues
// both implement it, so a timer or any other callback source can be pointed
// at either one without knowing which.
package wrap

// Wrapper submits jobs to an executor.
type Wrapper interface {
	// Wrap returns a function that submits job each time it is called.
	Wrap(job func()) func()
}

// Func adapts an ordinary function to Wrapper.
type Func func(job func()) func()

// Wrap calls f(job).
func (f Func) Wrap(job func()) func() {
	return f(job)
}

// Go is a Wrapper that runs each invocation on a new goroutine.
var Go Wrapper = Func(func(job func()) func() {
	return func() {
		go job()
	}
})

// Inline is a Wrapper that runs jobs on the calling goroutine.
var Inline Wrapper = Func(func(job func()) func() {
	return job
})
