package scheduler

import (
	"sync/atomic"

	"github.com/driftwave/fiberrt/corelog"
	"github.com/driftwave/fiberrt/fiber"
	"github.com/driftwave/fiberrt/internal/gid"
	"github.com/driftwave/fiberrt/invoker"
	"github.com/driftwave/fiberrt/metrics"
)

// Thread is a scheduler thread: one goroutine running the two-level
// thread-main/fiber-main loop described in the package doc comment. The zero
// value is not usable; construct one with NewThread.
type Thread struct {
	name  string
	queue RecordQueue
	qinv  *QueueInvoker
	log   corelog.Logger

	ep epoch
	id atomic.Uint64

	startedCh chan struct{}
	doneCh    chan struct{}
	wake      chan struct{}

	// wakeFD and osWake give an external goroutine (Pool.Configure,
	// ShutdownFinalizer) a way to interrupt this thread's idle fiber out of
	// its select promptly even under heavy GC/scheduler load, the standard
	// self-pipe idiom for OS-visible wakeup. wake alone is already
	// sufficient for correctness; this is the OS-visible half of the same
	// signal, wired in so the primitive is exercised rather than left to
	// bit-rot unused.
	wakeFD *fdWakeup
	osWake chan struct{}

	// runQ, current and idle are touched only by this Thread's own
	// goroutine; no lock is needed.
	runQ    runDeque
	current *fiber.Fiber
	idle    *fiber.Fiber
}

// NewThread constructs a Thread named name, backed by queue for its own
// invoker (see Invoker). The thread does not start running until Start is
// called.
func NewThread(name string, queue RecordQueue, log corelog.Logger, opts ...ThreadOption) *Thread {
	ro := resolveThreadOptions(opts)
	t := &Thread{
		name:      name,
		queue:     queue,
		log:       log,
		startedCh: make(chan struct{}),
		doneCh:    make(chan struct{}),
		wake:      make(chan struct{}, 1),
	}
	t.qinv = NewQueueInvoker(queue, t.ThreadID, log, ro.drops, ro.metrics, metrics.Tags{"thread": name})
	if wakeFD, err := newFDWakeup(); err == nil {
		t.wakeFD = wakeFD
		t.osWake = make(chan struct{}, 1)
		go t.forwardWakeFD()
	} else if log != nil {
		log.Warning().Log("scheduler: falling back to channel-only wakeup")
	}
	return t
}

// forwardWakeFD blocks on wakeFD.Wait and forwards each wake onto osWake,
// until wakeFD is closed (at thread teardown), at which point Wait returns
// an error and this goroutine exits.
func (t *Thread) forwardWakeFD() {
	for {
		if err := t.wakeFD.Wait(); err != nil {
			return
		}
		select {
		case t.osWake <- struct{}{}:
		default:
		}
	}
}

// Interrupt wakes this thread's idle fiber out of a blocked wait, if any,
// via both the in-process channel and the OS-level self-pipe. Safe to call
// from any goroutine.
func (t *Thread) Interrupt() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
	if t.wakeFD != nil {
		t.wakeFD.Signal()
	}
}

// Name returns the thread's configured name (spec §4.7's "<prefix>:<index>"
// naming convention for pool members, or a caller-chosen name for a
// standalone thread).
func (t *Thread) Name() string { return t.name }

// Invoker returns the Invoker fronting this thread's own queue: the handle
// callers use to submit work that runs inside this thread's fiber-main pump.
func (t *Thread) Invoker() invoker.Invoker { return t.qinv }

// Spawn creates a new fiber running callable and places it on the run queue
// of the thread that executes the spawn. Safe to call from any goroutine: the
// fiber and its run-queue placement are constructed inside a callable posted
// through this thread's own invoker, so a run queue is only ever touched from
// its own thread's execution context. For a thread whose queue is shared (a
// Pool member), any member that picks the callable up runs the fiber.
// Returns ErrShuttingDown, without spawning, once Shutdown has been
// requested.
func (t *Thread) Spawn(callable fiber.Callable, class fiber.StackSizeClass) error {
	if t.ep.shutdownRequested() {
		return ErrShuttingDown
	}
	t.qinv.Invoke(func() {
		f := fiber.New(callable, class)
		th := currentThread()
		if th == nil {
			th = t
		}
		th.runQ.pushBack(f)
	})
	return nil
}

// ThreadID reports this thread's id once started; this module identifies
// threads by the goroutine id of their threadMain loop.
func (t *Thread) ThreadID() uint64 { return t.id.Load() }

// Start launches the thread's goroutine. Returns ErrAlreadyStarted if called
// more than once.
func (t *Thread) Start() error {
	if !t.ep.tryStart() {
		return ErrAlreadyStarted
	}
	go t.threadMain()
	return nil
}

// Shutdown requests the thread stop: it finishes any in-flight callable and
// terminates at its next fiber-main boundary. Shutdown does not wait for the
// thread to actually stop (use Done for that), and does not by itself shut
// down the underlying queue passed to NewThread — a Pool shares one queue
// across many threads and shrinking it must not take the queue down with
// the threads being retired. A caller that owns its thread's queue
// exclusively should shut it down itself if it wants enqueued-but-unstarted
// work rejected too. Per spec §4.4, a thread requesting its own shutdown
// must not block waiting on itself, so Shutdown never blocks.
func (t *Thread) Shutdown() {
	if t.ep.tryRequestShutdown() {
		t.Interrupt()
	}
}

// Done returns a channel closed once the thread's goroutine has exited.
func (t *Thread) Done() <-chan struct{} { return t.doneCh }

func (t *Thread) threadMain() {
	defer close(t.doneCh)
	if t.wakeFD != nil {
		defer t.wakeFD.Close()
	}
	t.id.Store(gid.Current())
	close(t.startedCh)
	for {
		if t.ep.shutdownRequested() && t.runQ.empty() && t.current == nil {
			return
		}
		t.step()
	}
}

// step runs one thread-main iteration: ensure a ready fiber (spawning the
// idle fiber if none), resume it, and classify how it parked. yield_to is
// handled without recursion: the loop simply keeps resuming whatever fiber
// the previous one named as its yield_to target.
func (t *Thread) step() {
	if t.runQ.empty() {
		t.spawnIdle()
	}
	f, ok := t.runQ.popFront()
	if !ok {
		return
	}
	for {
		t.current = f
		f.SetScratch(t)
		signal := f.Resume()
		t.current = nil
		t.ep.bumpTurn()

		switch signal.Reason {
		case fiber.ParkYieldTo:
			t.runQ.pushFront(f)
			target, _ := signal.Meta.(*fiber.Fiber)
			if target == nil {
				return
			}
			f = target
			continue
		case fiber.ParkSleeping:
			if f == t.idle {
				t.idle = nil
			}
			meta, _ := signal.Meta.(sleepMeta)
			t.reschedule(f, meta.future, meta.invoker)
		case fiber.ParkSuspended:
			t.runQ.pushBack(f)
		case fiber.ParkTerminated:
			if f == t.idle {
				t.idle = nil
			}
		}
		return
	}
}
