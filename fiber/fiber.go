package fiber

import (
	"sync"
	"sync/atomic"

	"github.com/driftwave/fiberrt/internal/gid"
)

// Callable is the user work a Fiber runs. Suspension is expressed as an
// ordinary error return (ErrCanceled) rather than an exception, per the
// design notes' Go translation of "exception-driven cancel".
type Callable func() error

// ParkReason classifies why a fiber's goroutine just sent on its park
// channel.
type ParkReason int

const (
	// ParkSuspended means the fiber yielded cooperatively (yield/switch_to)
	// and should be placed back on a run queue.
	ParkSuspended ParkReason = iota
	// ParkSleeping means the fiber parked on an awaited result.
	ParkSleeping
	// ParkTerminated means the callable returned (Err holds its return
	// value, nil on success) or the cancel error unwound the fiber.
	ParkTerminated
	// ParkYieldTo means the fiber called yield_to(other): it should be
	// pushed back onto the front of its owner thread's run queue, and
	// Meta holds the *Fiber to resume directly in its place.
	ParkYieldTo
)

// ParkSignal is what a fiber's goroutine hands back to whoever resumed it.
type ParkSignal struct {
	Reason ParkReason
	// Meta carries scheduler-level payload describing the suspension (e.g.
	// the target invoker, or the future being awaited). The fiber package
	// does not interpret it.
	Meta any
	Err  error
}

// ContextHandler is a pair of callables invoked around every context switch
// of the fiber that registered them. Handlers are kept on a LIFO stack:
// OnOut handlers fire top-to-bottom on the way out, OnIn handlers fire
// bottom-to-top on the way back in, the same nesting discipline as defer.
type ContextHandler struct {
	OnOut func()
	OnIn  func()
}

// Fiber is a user-space execution context: a goroutine gated by a rendezvous
// protocol (see package doc), a stable id, fiber-local storage, and a
// one-shot cancellation flag.
type Fiber struct {
	id          atomic.Uint64
	stackClass  StackSizeClass
	callable    Callable
	goroutineID atomic.Uint64

	resumeCh chan struct{}
	parkCh   chan ParkSignal
	started  atomic.Bool

	canceled   atomic.Bool
	cancelable atomic.Bool

	mu            sync.Mutex
	state         State
	canceler      *Canceler
	awaitedFuture Cancelable
	fls           []any
	ctxHandlers   []ContextHandler
	scratch       any
}

var fiberIDCounter atomic.Uint64

// liveFibers maps a running fiber's goroutine id to itself, so that code
// running inside a fiber's callable - with no Fiber reference in scope -
// can recover "the current fiber" (scheduler.CurrentFiberID and friends).
// Registered once in trampoline, for the fiber's entire lifetime.
var liveFibers sync.Map // map[uint64]*Fiber

// CurrentFiber returns the Fiber owning the calling goroutine, or nil if the
// calling goroutine is not a fiber's backing goroutine.
func CurrentFiber() *Fiber {
	id := gid.Current()
	if v, ok := liveFibers.Load(id); ok {
		return v.(*Fiber)
	}
	return nil
}

// SetScratch stores scheduler-private bookkeeping on the fiber (e.g. which
// scheduler thread currently owns it). Distinct from fiber-local storage:
// FLS is the user-facing slot vector with destructor semantics; scratch is
// a single opaque value for the scheduler package's own use.
//
// Reads and writes take the fiber's mutex, so a scheduler thread may write
// scratch right before calling Resume and the fiber's own goroutine may read
// it once running.
func (f *Fiber) SetScratch(v any) {
	f.mu.Lock()
	f.scratch = v
	f.mu.Unlock()
}

// Scratch returns the value last set by SetScratch.
func (f *Fiber) Scratch() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scratch
}

// New creates a Fiber in state Suspended, with a process-unique id, and
// launches its backing goroutine (parked immediately on the rendezvous
// channel until the first Resume).
func New(callable Callable, class StackSizeClass) *Fiber {
	f := &Fiber{
		stackClass: class,
		callable:   callable,
		resumeCh:   make(chan struct{}),
		parkCh:     make(chan ParkSignal),
		state:      Suspended,
	}
	f.id.Store(fiberIDCounter.Add(1))
	go f.trampoline()
	return f
}

// ID returns the fiber's current id, stable until RegenerateID or
// destruction.
func (f *Fiber) ID() uint64 { return f.id.Load() }

// RegenerateID assigns a new process-unique id, for reuse of a fiber across
// logically distinct work units (see scheduler's idle-fiber reuse).
func (f *Fiber) RegenerateID() uint64 {
	id := fiberIDCounter.Add(1)
	f.id.Store(id)
	return id
}

// StackSizeClass returns the class the fiber was created with.
func (f *Fiber) StackSizeClass() StackSizeClass { return f.stackClass }

// State returns the current state. Owner-only: safe to call from any
// goroutine, but only meaningful when called by the thread that currently
// owns (is driving) the fiber.
func (f *Fiber) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetRunning transitions the fiber to Running. Owner-only. Refuses to leave
// Terminated.
func (f *Fiber) SetRunning() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Terminated {
		return ErrAlreadyTerminated
	}
	f.state = Running
	return nil
}

// SetSleeping transitions the fiber to Sleeping, recording at most one
// awaited future. Owner-only. Refuses to leave Terminated.
func (f *Fiber) SetSleeping(awaited Cancelable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Terminated {
		return ErrAlreadyTerminated
	}
	f.state = Sleeping
	f.awaitedFuture = awaited
	return nil
}

// SetSuspended transitions the fiber to Suspended, clearing any awaited
// future. Owner-only. Refuses to leave Terminated.
func (f *Fiber) SetSuspended() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Terminated {
		return ErrAlreadyTerminated
	}
	f.state = Suspended
	f.awaitedFuture = nil
	return nil
}

// IsTerminated reports whether the fiber has finished running.
func (f *Fiber) IsTerminated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == Terminated
}

// IsCanceled reports whether Cancel has been called on this fiber.
func (f *Fiber) IsCanceled() bool { return f.canceled.Load() }

// Cancel is idempotent: it flips the one-shot canceled flag and, if the
// fiber is currently Sleeping on a recorded future, cancels that future too
// so any external work backing it is torn down.
func (f *Fiber) Cancel() {
	if !f.canceled.CompareAndSwap(false, true) {
		return
	}
	f.mu.Lock()
	sleeping := f.state == Sleeping
	awaited := f.awaitedFuture
	f.mu.Unlock()
	if sleeping && awaited != nil {
		awaited.Cancel()
	}
}

// PushContextHandlers installs a handler pair on top of the LIFO stack.
// Owner-only.
func (f *Fiber) PushContextHandlers(onOut, onIn func()) {
	f.mu.Lock()
	f.ctxHandlers = append(f.ctxHandlers, ContextHandler{OnOut: onOut, OnIn: onIn})
	f.mu.Unlock()
}

// PopContextHandlers removes the most recently pushed handler pair.
// Owner-only. No-op if the stack is empty.
func (f *Fiber) PopContextHandlers() {
	f.mu.Lock()
	if n := len(f.ctxHandlers); n > 0 {
		f.ctxHandlers = f.ctxHandlers[:n-1]
	}
	f.mu.Unlock()
}

func (f *Fiber) snapshotHandlers() []ContextHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ContextHandler, len(f.ctxHandlers))
	copy(out, f.ctxHandlers)
	return out
}

// fireOut runs OnOut handlers top-of-stack first (LIFO).
func (f *Fiber) fireOut() {
	handlers := f.snapshotHandlers()
	for i := len(handlers) - 1; i >= 0; i-- {
		if handlers[i].OnOut != nil {
			handlers[i].OnOut()
		}
	}
}

// fireIn runs OnIn handlers bottom-of-stack first (FIFO), mirroring fireOut
// to preserve nesting discipline across a single switch out/in pair.
func (f *Fiber) fireIn() {
	handlers := f.snapshotHandlers()
	for i := range handlers {
		if handlers[i].OnIn != nil {
			handlers[i].OnIn()
		}
	}
}

// Resume hands control to the fiber: it must currently be Suspended. It
// blocks until the fiber parks again (suspends, sleeps, or terminates) and
// returns the resulting ParkSignal. This is the scheduler-thread side of the
// rendezvous that stands in for a raw context switch.
func (f *Fiber) Resume() ParkSignal {
	if err := f.SetRunning(); err != nil {
		panic("fiber: Resume called on a terminated fiber: " + err.Error())
	}
	f.resumeCh <- struct{}{}
	return <-f.parkCh
}

// Park is called from the fiber's own goroutine to suspend it: it transitions
// state, runs the OnOut handlers, hands a ParkSignal to whoever is blocked in
// Resume, then blocks until resumed. On resume it runs the OnIn handlers and
// returns ErrCanceled if the fiber was canceled while parked.
//
// The state transition happens before OnOut fires, not after: wait_for's
// contract is that a concurrent Cancel() observing this fiber as Sleeping is
// guaranteed to also cancel the awaited future, and OnOut handlers may run
// arbitrary user code that takes time. Flipping the state first closes the
// race window in which Cancel() would see Running and merely set the
// one-shot flag without tearing down the external work the future backs.
//
// reason must be ParkSuspended, ParkYieldTo, or ParkSleeping; ParkTerminated
// is only ever sent by the trampoline itself.
func (f *Fiber) Park(reason ParkReason, meta any, awaited Cancelable) error {
	switch reason {
	case ParkSleeping:
		if err := f.SetSleeping(awaited); err != nil {
			return err
		}
	default:
		if err := f.SetSuspended(); err != nil {
			return err
		}
	}
	f.fireOut()
	f.parkCh <- ParkSignal{Reason: reason, Meta: meta}
	<-f.resumeCh
	f.fireIn()
	if f.canceled.Load() {
		return ErrCanceled
	}
	return nil
}

func (f *Fiber) trampoline() {
	<-f.resumeCh
	id := gid.Current()
	f.goroutineID.Store(id)
	liveFibers.Store(id, f)

	err := f.callable()

	f.mu.Lock()
	f.state = Terminated
	f.mu.Unlock()
	liveFibers.Delete(id)
	f.runFLSDestructors()

	f.parkCh <- ParkSignal{Reason: ParkTerminated, Err: err}
}

// GoroutineID returns the id of the goroutine the fiber's callable runs on,
// valid once the fiber has been resumed at least once.
func (f *Fiber) GoroutineID() uint64 { return f.goroutineID.Load() }
