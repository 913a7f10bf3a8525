package future

// Future is the scheduler's view of an asynchronous result. Implementations
// must make Subscribe, Cancel, and IsSet safe to call from the scheduler
// thread without blocking.
type Future interface {
	// Subscribe registers callback to run exactly once when the future
	// completes, with the result value and/or error. If the future is
	// already complete, callback runs synchronously, inline, before
	// Subscribe returns.
	Subscribe(callback func(result any, err error))
	// Cancel is a best-effort request to abort whatever produces the
	// result. It does not guarantee immediate completion.
	Cancel()
	// IsSet reports whether the future has already completed.
	IsSet() bool
}
