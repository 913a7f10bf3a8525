package scheduler

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/driftwave/fiberrt/corelog"
	"github.com/driftwave/fiberrt/invoker"
	"github.com/driftwave/fiberrt/queue"
)

// finalizerShutdownSpinBudget and finalizerShutdownSpinCount give drain
// teardown a generous timed spin followed by a short fixed number of
// yields, sized from a 30-second budget and a ShutdownSpinCount of 100.
const (
	finalizerShutdownSpinBudget = 30 * time.Second
	finalizerShutdownSpinCount  = 100
)

var (
	finalizerOnce    sync.Once
	finalizerThread  *Thread
	finalizerRefs    atomic.Int64
	finalizerTracked invoker.Invoker
)

// trackingInvoker wraps an Invoker so that every callable posted through it
// holds a finalizer ref for its entire in-flight lifetime: the ref is taken
// before Invoke hands the callable to the underlying invoker and released
// once the callable returns, automatically, with no separate bookkeeping
// required at the call site. This is the automatic-refcounting counterpart
// of TrackFinalizerRef/UntrackFinalizerRef, applied uniformly to the one
// invoker (the finalizer thread's own) whose in-flight work ShutdownFinalizer
// must wait to drain.
type trackingInvoker struct {
	underlying invoker.Invoker
}

func (t trackingInvoker) ThreadID() uint64 { return t.underlying.ThreadID() }

func (t trackingInvoker) Invoke(fn func()) {
	TrackFinalizerRef()
	t.underlying.Invoke(func() {
		defer UntrackFinalizerRef()
		fn()
	})
}

// finalizerInvoker lazily starts the process-global finalizer thread (spec
// §4.8) on first use and returns an invoker that automatically tracks a
// finalizer ref for every callable posted through it. Used exclusively by
// the reschedule protocol's unwinder path (reschedule.go) and by callers
// doing background cleanup that must outlive the fiber that triggered it.
func finalizerInvoker() invoker.Invoker {
	finalizerOnce.Do(func() {
		finalizerThread = NewThread("Finalizer", queue.NewSingleConsumerQueue(), corelog.Nop())
		_ = finalizerThread.Start()
		finalizerTracked = trackingInvoker{underlying: finalizerThread.Invoker()}
	})
	return finalizerTracked
}

// TrackFinalizerRef and UntrackFinalizerRef let background cleanup register
// that it holds a reference the finalizer must wait to drain before the
// process may exit. Every callable posted through finalizerInvoker() is
// tracked automatically (see trackingInvoker); call these directly only for
// cleanup that does not go through finalizerInvoker() at all.
func TrackFinalizerRef()   { finalizerRefs.Add(1) }
func UntrackFinalizerRef() { finalizerRefs.Add(-1) }

// ShutdownFinalizer is the last stage of process teardown (spec §4.8): it
// requests the finalizer thread stop, then spins waiting for outstanding
// references to drain. If a reference leak prevents that within the spin
// budget, it invokes dumpTracker (if non-nil, analogous to
// TRefCountedTrackerFacade::Dump()) and aborts the process: a finalizer ref
// that never drains means cleanup has stalled permanently, and there is no
// safe way to continue tearing down around it.
func ShutdownFinalizer(dumpTracker func()) {
	if finalizerThread == nil {
		return
	}
	finalizerThread.Shutdown()

	deadline := time.Now().Add(finalizerShutdownSpinBudget)
	for time.Now().Before(deadline) {
		if finalizerRefs.Load() == 0 {
			<-finalizerThread.Done()
			return
		}
		time.Sleep(time.Millisecond)
	}
	for i := 0; i < finalizerShutdownSpinCount; i++ {
		if finalizerRefs.Load() == 0 {
			<-finalizerThread.Done()
			return
		}
		time.Sleep(time.Millisecond)
	}

	if dumpTracker != nil {
		dumpTracker()
	}
	os.Exit(1)
}
