package invoker

import (
	"sync"
	"sync/atomic"

	"github.com/driftwave/fiberrt/internal/gid"
)

// Bounded enforces max_concurrent simultaneously-running callables (spec
// §4.5): an MPSC queue of pending callables plus an atomic semaphore.
// invoke enqueues and calls scheduleMore; scheduleMore acquires one
// semaphore unit, dequeues one callable, submits a driver to the underlying
// invoker that runs it, releases the unit, and calls scheduleMore again —
// the same resubmit-rather-than-loop shape as Serialized, so the underlying
// invoker's own fairness policy gets a say between every callable.
//
// Reentrant scheduleMore calls from the same goroutine (a driver calling
// scheduleMore calling back into a driver synchronously, if the underlying
// invoker runs inline) are blocked via a per-goroutine guard, the same
// thread-local reentrancy-guard idiom used anywhere an inline-capable
// invoker must stop a synchronous callback from recursing into itself.
type Bounded struct {
	underlying Invoker
	maxConc    int64
	sem        atomic.Int64
	queue      fifo

	reentry sync.Map // map[uint64]struct{} — goroutine ids currently inside scheduleMore
}

var _ Invoker = (*Bounded)(nil)

// NewBounded wraps underlying so that at most maxConcurrent callables
// submitted through it run at once.
func NewBounded(underlying Invoker, maxConcurrent int) *Bounded {
	b := &Bounded{underlying: underlying, maxConc: int64(maxConcurrent)}
	b.sem.Store(int64(maxConcurrent))
	return b
}

func (b *Bounded) ThreadID() uint64 { return b.underlying.ThreadID() }

// Invoke enqueues fn and attempts to schedule it (or whatever is now at the
// front of the queue) immediately.
func (b *Bounded) Invoke(fn func()) {
	b.queue.push(fn)
	b.scheduleMore()
}

// Running reports how many callables submitted through b are currently
// executing.
func (b *Bounded) Running() int { return int(b.maxConc - b.sem.Load()) }

func (b *Bounded) scheduleMore() {
	id := gid.Current()
	if _, already := b.reentry.LoadOrStore(id, struct{}{}); already {
		return
	}
	defer b.reentry.Delete(id)

	for {
		if !b.acquire() {
			return
		}
		fn, ok := b.queue.pop()
		if !ok {
			b.release()
			return
		}
		b.underlying.Invoke(func() {
			fn()
			b.release()
			b.scheduleMore()
		})
	}
}

func (b *Bounded) acquire() bool {
	for {
		cur := b.sem.Load()
		if cur <= 0 {
			return false
		}
		if b.sem.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

func (b *Bounded) release() { b.sem.Add(1) }
