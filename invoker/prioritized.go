package invoker

import (
	"container/heap"
	"sync"
)

type priorityEntry struct {
	fn       func()
	priority int64
	seq      uint64
}

// priorityHeap is a container/heap max-heap ordered by priority; ties are
// broken by insertion order purely for FIFO-ish determinism in tests, the
// spec leaves equal-priority ordering unspecified ("ordered arbitrarily").
type priorityHeap []priorityEntry

func (h priorityHeap) Len() int { return len(h) }
func (h priorityHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h priorityHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x any)   { *h = append(*h, x.(priorityEntry)) }
func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Prioritized orders submitted callables by a caller-supplied priority
// (spec §4.5): a binary max-heap guarded by a lock; invoke pushes and
// submits a driver-callable that pops the current max and runs it.
//
// Because the driver always pops the current max at the moment it actually
// runs rather than the moment it was submitted, a higher-priority callable
// enqueued after a driver submission but before that driver runs will run
// first — the driver submitted by invoke(a) may end up running some later
// b with priority(b) > priority(a). This is a known ordering gap in the
// single-driver-in-flight design; it is intentional and is preserved
// rather than "fixed", and is exercised explicitly by prioritized_test.go.
type Prioritized struct {
	underlying Invoker
	mu         sync.Mutex
	heap       priorityHeap
	seq        uint64
}

var _ Invoker = (*Prioritized)(nil)

// NewPrioritized wraps underlying with priority-ordered dispatch.
func NewPrioritized(underlying Invoker) *Prioritized {
	return &Prioritized{underlying: underlying}
}

func (p *Prioritized) ThreadID() uint64 { return p.underlying.ThreadID() }

// Invoke submits fn with the given priority; higher values run first.
func (p *Prioritized) Invoke(fn func(), priority int64) {
	p.mu.Lock()
	p.seq++
	heap.Push(&p.heap, priorityEntry{fn: fn, priority: priority, seq: p.seq})
	p.mu.Unlock()
	p.underlying.Invoke(p.drive)
}

func (p *Prioritized) drive() {
	p.mu.Lock()
	if p.heap.Len() == 0 {
		p.mu.Unlock()
		return
	}
	e := heap.Pop(&p.heap).(priorityEntry)
	p.mu.Unlock()
	e.fn()
}

// FixedPriority wraps a Prioritized invoker to present the plain
// invoke(callable) interface used everywhere else, always submitting at one
// fixed priority (spec §4.5).
type FixedPriority struct {
	inner    *Prioritized
	priority int64
}

var _ Invoker = (*FixedPriority)(nil)

// NewFixedPriority returns an Invoker that submits every callable to inner
// at the given fixed priority.
func NewFixedPriority(inner *Prioritized, priority int64) *FixedPriority {
	return &FixedPriority{inner: inner, priority: priority}
}

func (f *FixedPriority) ThreadID() uint64 { return f.inner.ThreadID() }
func (f *FixedPriority) Invoke(fn func()) { f.inner.Invoke(fn, f.priority) }

// FakePrioritized is the degenerate variant from spec §4.5 that accepts
// priorities but ignores them entirely, running callables in submission
// order. Useful as a drop-in when a component wants the Prioritized API
// surface without its ordering cost, or in tests that want FIFO semantics
// through the same call shape.
type FakePrioritized struct {
	underlying Invoker
}

var _ interface {
	Invoke(fn func(), priority int64)
	ThreadID() uint64
} = (*FakePrioritized)(nil)

// NewFakePrioritized wraps underlying, ignoring the priority argument.
func NewFakePrioritized(underlying Invoker) *FakePrioritized {
	return &FakePrioritized{underlying: underlying}
}

func (f *FakePrioritized) ThreadID() uint64 { return f.underlying.ThreadID() }
func (f *FakePrioritized) Invoke(fn func(), _ int64) {
	f.underlying.Invoke(fn)
}
