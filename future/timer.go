package future

import (
	"errors"
	"time"
)

// ErrTimerCanceled is the rejection reason delivered to subscribers of a
// TimerFuture that was cancelled before it elapsed.
var ErrTimerCanceled = errors.New("future: timer cancelled")

// NewTimerFuture returns a Promise that resolves with nil after d elapses,
// or is rejected with ErrTimerCanceled if Cancel is called first. It is the
// reference timeout future the spec assumes scheduler users supply for
// wait_for-based sleeps and bounded-concurrency tests (the scheduler itself
// has no timeout primitive).
func NewTimerFuture(d time.Duration) *Promise {
	p := NewPromise()
	t := time.AfterFunc(d, func() { p.Resolve(nil) })
	p.OnCancel(func() {
		t.Stop()
		p.Reject(ErrTimerCanceled)
	})
	return p
}
