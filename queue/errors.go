package queue

import "errors"

var (
	// ErrEmpty is returned by BeginExecute when there is no record ready to
	// dequeue.
	ErrEmpty = errors.New("queue: empty")
	// ErrShutdown is returned by Invoke once Shutdown has been called; the
	// record is dropped rather than enqueued.
	ErrShutdown = errors.New("queue: shut down")
)
