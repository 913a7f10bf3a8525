package scheduler

import "errors"

var (
	// ErrNotOnScheduler is returned by CurrentScheduler-family lookups (and
	// panicked by CurrentScheduler itself) when called from a goroutine that
	// is not a fiber's backing goroutine currently owned by a Thread.
	ErrNotOnScheduler = errors.New("scheduler: not running on a scheduler thread")

	// ErrAlreadyStarted is returned by Thread.Start if called more than once.
	ErrAlreadyStarted = errors.New("scheduler: thread already started")

	// ErrShuttingDown is returned by Thread.Spawn once Shutdown has been
	// requested; new fibers are rejected rather than silently dropped so
	// callers can react (spec §7.2 misuse vs shutdown distinction — this is
	// the ordinary "shutdown" case, not a programming bug).
	ErrShuttingDown = errors.New("scheduler: thread is shutting down")
)
