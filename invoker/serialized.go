package invoker

import "sync/atomic"

// Serialized guarantees at most one callable submitted through it runs at a
// time, per spec §4.5: backed by an MPSC queue and a single-bit lock flag.
// invoke enqueues and, if it wins the CAS on the lock, submits one
// driver-callable to the underlying invoker; the driver pops one entry, runs
// it, then releases the lock and resubmits a fresh driver if the queue is
// still non-empty. Built on a single-bit CAS lock, the same compare-and-swap
// state-machine idiom used elsewhere for one-shot flags, generalized here
// from a run/sleep flag to a plain mutual-exclusion gate.
type Serialized struct {
	underlying Invoker
	queue      fifo
	locked     atomic.Bool
}

var _ Invoker = (*Serialized)(nil)

// NewSerialized wraps underlying with a serialized execution discipline.
func NewSerialized(underlying Invoker) *Serialized {
	return &Serialized{underlying: underlying}
}

func (s *Serialized) ThreadID() uint64 { return s.underlying.ThreadID() }

// Invoke enqueues fn. If no driver is currently running, this call also wins
// the CAS that submits one to the underlying invoker.
func (s *Serialized) Invoke(fn func()) {
	s.queue.push(fn)
	s.trySubmit()
}

func (s *Serialized) trySubmit() {
	if s.queue.empty() {
		return
	}
	if s.locked.CompareAndSwap(false, true) {
		s.underlying.Invoke(s.drive)
	}
}

// drive runs exactly one queued callable per invocation, then releases the
// lock and, if more work arrived while it ran, resubmits itself. Resubmitting
// rather than looping in place keeps each driver invocation's runtime
// bounded by one callable, so the underlying invoker's own fairness policy
// (e.g. a prioritized or fair-share invoker below this one) still gets a say
// between callables.
func (s *Serialized) drive() {
	fn, ok := s.queue.pop()
	if !ok {
		// Lost a race with a concurrent Invoke that hadn't pushed yet when
		// we CAS'd the lock; nothing to do but release and let the other
		// Invoke's trySubmit (which will find the lock already held, or
		// already released here) pick it up.
		s.locked.Store(false)
		s.trySubmit()
		return
	}
	fn()
	s.locked.Store(false)
	s.trySubmit()
}
