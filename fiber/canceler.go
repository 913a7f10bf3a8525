package fiber

import "weak"

// Cancelable is the minimal surface a parked fiber's awaited result must
// expose so that cancellation can propagate into it. It is satisfied by
// future.Future without the fiber package importing the future package,
// keeping fiber at the bottom of the dependency order (see spec §2).
type Cancelable interface {
	Cancel()
}

// Canceler is a cheap, shareable callable that cancels a specific fiber. It
// holds only a weak.Pointer reference to its target, the same GC-friendly
// tracking idiom used anywhere a handle must be handed out to unrelated
// code without becoming the reason its target outlives the component
// driving it.
type Canceler struct {
	ref weak.Pointer[Fiber]
}

// Cancel invokes Fiber.Cancel on the target, if it is still alive.
func (c *Canceler) Cancel() {
	if f := c.ref.Value(); f != nil {
		f.Cancel()
	}
}

// Canceler lazily constructs and returns a stable weak-bound handle for f.
// Repeated calls return the same handle. Once any caller holds the handle,
// f is considered "cancelable" for the purposes of the scheduler's idle-fiber
// reuse decision (see scheduler package).
func (f *Fiber) Canceler() *Canceler {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.canceler == nil {
		f.canceler = &Canceler{ref: weak.Make(f)}
		f.cancelable.Store(true)
	}
	return f.canceler
}

// IsCancelable reports whether a Canceler handle has been taken out for f.
func (f *Fiber) IsCancelable() bool {
	return f.cancelable.Load()
}
