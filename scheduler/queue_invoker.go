package scheduler

import (
	"github.com/joeycumines/go-catrate"

	"github.com/driftwave/fiberrt/corelog"
	"github.com/driftwave/fiberrt/metrics"
	"github.com/driftwave/fiberrt/queue"
)

// RecordQueue is the subset of queue.SingleConsumerQueue and
// queue.MultiConsumerQueue a Thread needs: enough to submit callables and to
// pump them from the fiber-main loop. Deliberately excludes the
// SetThreadID/ThreadID pair, which only SingleConsumerQueue has, so a
// QueueInvoker can wrap either variant identically.
type RecordQueue interface {
	Invoke(r queue.Record) error
	BeginExecute() (queue.Record, error)
	EndExecute(r queue.Record) queue.Record
	Shutdown()
	IsRunning() bool
	Drain() []queue.Record
	IsEmpty() bool
	NotifyChan() <-chan struct{}
}

// QueueInvoker adapts a RecordQueue to invoker.Invoker, the public-facing
// abstraction (spec §6). threadID is supplied by the owning Thread rather
// than read off the queue, since only the single-consumer variant tracks one
// at all.
type QueueInvoker struct {
	queue    RecordQueue
	threadID func() uint64
	log      corelog.Logger
	drops    *catrate.Limiter
	metrics  metrics.Sink
	tags     metrics.Tags
}

// NewQueueInvoker wraps q, reporting threadID() for ThreadID and logging (at
// a rate bounded by drops, which may be nil to log every drop) any Invoke
// that arrives after q has been shut down. Every callable driven via drive
// reports its wait and run time to sink (metrics.Nop() discards them) under
// the given tags.
func NewQueueInvoker(q RecordQueue, threadID func() uint64, log corelog.Logger, drops *catrate.Limiter, sink metrics.Sink, tags metrics.Tags) *QueueInvoker {
	if sink == nil {
		sink = metrics.Nop()
	}
	return &QueueInvoker{queue: q, threadID: threadID, log: log, drops: drops, metrics: sink, tags: tags}
}

// IsRunning reports whether the underlying queue still accepts work; it
// satisfies the reschedule protocol's shutdownAware check (reschedule.go).
func (qi *QueueInvoker) IsRunning() bool { return qi.queue.IsRunning() }

func (qi *QueueInvoker) ThreadID() uint64 {
	if qi.threadID == nil {
		return 0
	}
	return qi.threadID()
}

// Invoke enqueues fn, dropping and logging it if the underlying queue has
// already shut down. Matches invoker.Invoker's "never block the caller"
// contract: RecordQueue.Invoke never blocks.
func (qi *QueueInvoker) Invoke(fn func()) {
	err := qi.queue.Invoke(queue.Record{Callable: fn})
	if err == nil {
		return
	}
	allow := qi.drops == nil
	if qi.drops != nil {
		_, allow = qi.drops.Allow("invoker.drop")
	}
	if allow && qi.log != nil {
		qi.log.Warning().Log("invoker: dropped callable, queue shut down")
	}
}

// drive runs at most one queued callable, stamping Record timestamps around
// it. Returns false if the queue was empty.
func (qi *QueueInvoker) drive() bool {
	r, err := qi.queue.BeginExecute()
	if err != nil {
		return false
	}
	qi.metrics.Observe("scheduler.wait_time", qi.tags, r.WaitTime().Seconds())
	defer func() {
		out := qi.queue.EndExecute(r)
		qi.metrics.Observe("scheduler.run_time", qi.tags, out.RunTime().Seconds())
	}()
	r.Callable()
	return true
}
