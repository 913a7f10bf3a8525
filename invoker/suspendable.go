package invoker

import (
	"sync"
	"sync/atomic"

	"github.com/driftwave/fiberrt/future"
)

// Suspendable adds Suspend/Resume to an underlying invoker (spec §4.5):
// Suspend returns a future that completes once every callable that was
// already running or queued at the moment of the call has finished; while
// suspended, new Invoke calls are accepted but held rather than forwarded.
type Suspendable struct {
	underlying Invoker

	mu        sync.Mutex
	suspended bool
	pending   []func()

	inFlight atomic.Int64
	drainMu  sync.Mutex
	drainSub []*future.Promise
}

var _ Invoker = (*Suspendable)(nil)

// NewSuspendable wraps underlying.
func NewSuspendable(underlying Invoker) *Suspendable {
	return &Suspendable{underlying: underlying}
}

func (s *Suspendable) ThreadID() uint64 { return s.underlying.ThreadID() }

// Invoke submits fn, unless currently suspended, in which case fn is held
// until Resume.
func (s *Suspendable) Invoke(fn func()) {
	wrapped := func() {
		fn()
		s.finish()
	}

	s.mu.Lock()
	if s.suspended {
		s.pending = append(s.pending, wrapped)
		s.mu.Unlock()
		return
	}
	s.inFlight.Add(1)
	s.mu.Unlock()
	s.underlying.Invoke(wrapped)
}

func (s *Suspendable) finish() {
	if s.inFlight.Add(-1) != 0 {
		return
	}
	s.drainMu.Lock()
	if s.inFlight.Load() != 0 {
		// A new Invoke landed between our Add(-1) and taking the lock;
		// whoever drives inFlight back to zero next will fire drainSub.
		s.drainMu.Unlock()
		return
	}
	subs := s.drainSub
	s.drainSub = nil
	s.drainMu.Unlock()
	for _, p := range subs {
		p.Resolve(nil)
	}
}

// Suspend stops forwarding new Invoke calls to the underlying invoker and
// returns a future that completes once every callable running or queued at
// the moment of the call has drained. Calling Suspend again before Resume
// is a no-op beyond returning a fresh completion future for the (possibly
// already-drained) outstanding set.
func (s *Suspendable) Suspend() *future.Promise {
	s.mu.Lock()
	s.suspended = true
	s.mu.Unlock()

	p := future.NewPromise()
	s.drainMu.Lock()
	if s.inFlight.Load() == 0 {
		s.drainMu.Unlock()
		p.Resolve(nil)
		return p
	}
	s.drainSub = append(s.drainSub, p)
	s.drainMu.Unlock()
	return p
}

// Resume forwards every callable queued while suspended to the underlying
// invoker and accepts new Invoke calls again.
func (s *Suspendable) Resume() {
	s.mu.Lock()
	s.suspended = false
	queued := s.pending
	s.pending = nil
	s.inFlight.Add(int64(len(queued)))
	s.mu.Unlock()

	for _, fn := range queued {
		s.underlying.Invoke(fn)
	}
}
