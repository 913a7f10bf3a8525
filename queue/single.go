package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// SingleConsumerQueue is the invoker queue variant backing one scheduler
// thread's private run queue (spec §4.3's single-consumer variant): any
// number of producer goroutines may call Invoke, but BeginExecute/EndExecute
// are only ever called from the one goroutine that owns the queue.
type SingleConsumerQueue struct {
	mu      sync.Mutex
	records chunkedList

	running  atomic.Bool
	threadID atomic.Uint64

	// notify carries at most one pending wakeup; a scheduler thread selects
	// on it to know a previously empty queue gained work, the same
	// buffered-channel wakeup idiom used anywhere a producer must nudge a
	// single blocked consumer without itself blocking.
	notify chan struct{}
}

// NewSingleConsumerQueue returns a running, empty queue.
func NewSingleConsumerQueue() *SingleConsumerQueue {
	q := &SingleConsumerQueue{notify: make(chan struct{}, 1)}
	q.running.Store(true)
	return q
}

// SetThreadID records the id of the goroutine/OS thread that owns this
// queue's consumer side. Informational only; never consulted for
// correctness.
func (q *SingleConsumerQueue) SetThreadID(id uint64) { q.threadID.Store(id) }

// ThreadID returns the id last set via SetThreadID, or 0 if never set.
func (q *SingleConsumerQueue) ThreadID() uint64 { return q.threadID.Load() }

// NotifyChan returns the channel a consumer can select on to be woken when
// Invoke adds to a queue it might otherwise have found empty. A receive is
// not a guarantee of non-emptiness (BeginExecute may still return ErrEmpty);
// it is a hint to re-poll.
func (q *SingleConsumerQueue) NotifyChan() <-chan struct{} { return q.notify }

// Invoke enqueues a record for later execution. Returns ErrShutdown, without
// enqueuing, once Shutdown has been called.
func (q *SingleConsumerQueue) Invoke(r Record) error {
	if !q.running.Load() {
		return ErrShutdown
	}
	r.EnqueuedAt = time.Now()
	q.mu.Lock()
	q.records.push(r)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// BeginExecute dequeues the next record and stamps its start time. Returns
// ErrEmpty if nothing is queued.
func (q *SingleConsumerQueue) BeginExecute() (Record, error) {
	q.mu.Lock()
	r, ok := q.records.pop()
	q.mu.Unlock()
	if !ok {
		return Record{}, ErrEmpty
	}
	r.StartedAt = time.Now()
	return r, nil
}

// EndExecute stamps a record's finish time. Call after running r.Callable.
func (q *SingleConsumerQueue) EndExecute(r Record) Record {
	r.FinishedAt = time.Now()
	return r
}

// Shutdown stops further Invoke calls from enqueuing. Already-queued records
// are left in place for Drain.
func (q *SingleConsumerQueue) Shutdown() { q.running.Store(false) }

// IsRunning reports whether Shutdown has not yet been called.
func (q *SingleConsumerQueue) IsRunning() bool { return q.running.Load() }

// Drain removes and returns every currently queued record, in FIFO order.
// Intended for use after Shutdown, to let a caller dispose of or reassign
// abandoned work.
func (q *SingleConsumerQueue) Drain() []Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records.drain()
}

// IsEmpty reports whether the queue currently holds no records.
func (q *SingleConsumerQueue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records.Len() == 0
}

// Len reports the current queue depth.
func (q *SingleConsumerQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records.Len()
}
