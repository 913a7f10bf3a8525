package invoker

// Invoker is the sole public abstraction exported to users (spec §6):
// something that accepts callables and can report which OS-thread-like
// identity its work runs on. queue.SingleConsumerQueue and
// queue.MultiConsumerQueue are adapted to this interface by the scheduler
// package (QueueInvoker); every wrapper in this package both consumes and
// produces an Invoker, so wrappers compose freely.
type Invoker interface {
	// Invoke submits fn for execution. Implementations must not block the
	// caller; fn may run on a different goroutine, later, or (if the
	// underlying invoker has been shut down) never.
	Invoke(fn func())
	// ThreadID identifies the consumer side, for affinity checks and
	// metrics tagging. Zero if unknown or not yet assigned.
	ThreadID() uint64
}
