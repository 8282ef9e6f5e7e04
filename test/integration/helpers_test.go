package integration

import (
	"bytes"
	"runtime"
)

// goroutineTag returns the "goroutine N" header of the current stack.
func goroutineTag() string {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	if i := bytes.IndexByte(buf, '['); i > 0 {
		buf = buf[:i]
	}
	return string(bytes.TrimSpace(buf))
}
