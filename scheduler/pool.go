package scheduler

import (
	"fmt"
	"sync"

	"github.com/driftwave/fiberrt/corelog"
	"github.com/driftwave/fiberrt/invoker"
	"github.com/driftwave/fiberrt/metrics"
	"github.com/driftwave/fiberrt/queue"
)

// Pool is N scheduler threads sharing a single multi-consumer invoker queue
// (spec §4.7). Threads are named "<prefix>:<index>".
type Pool struct {
	prefix string
	log    corelog.Logger
	opts   []ThreadOption

	mu      sync.Mutex
	queue   *queue.MultiConsumerQueue
	qinv    *QueueInvoker
	threads []*Thread
}

// NewPool constructs a Pool named prefix and grows it to count threads. opts
// apply to every member thread (present and future, via Configure); see
// WithMetrics and WithDropLimiter.
func NewPool(prefix string, count int, log corelog.Logger, opts ...ThreadOption) *Pool {
	q := queue.NewMultiConsumerQueue()
	p := &Pool{
		prefix: prefix,
		log:    log,
		opts:   opts,
		queue:  q,
	}
	p.qinv = NewQueueInvoker(q, func() uint64 { return 0 }, log, nil, metrics.Nop(), nil)
	p.Configure(count)
	return p
}

// Invoker returns the pool's shared invoker (spec's get_invoker()): submit
// here and any idle member thread may pick the callable up.
func (p *Pool) Invoker() invoker.Invoker { return p.qinv }

// Configure grows or shrinks the pool to count threads. Growing spawns new
// threads immediately. Shrinking requests the tail threads shut down; they
// terminate at their next fiber-main boundary, after completing any
// in-flight callable, without taking the shared queue down with them.
func (p *Pool) Configure(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.threads) < count {
		idx := len(p.threads)
		th := NewThread(fmt.Sprintf("%s:%d", p.prefix, idx), p.queue, p.log, p.opts...)
		p.threads = append(p.threads, th)
		_ = th.Start()
	}
	for len(p.threads) > count {
		last := len(p.threads) - 1
		th := p.threads[last]
		p.threads = p.threads[:last]
		th.Shutdown()
	}
}

// Len reports the current number of member threads.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}

// Shutdown shuts down the shared queue (rejecting further Invoke calls) and
// requests every member thread stop.
func (p *Pool) Shutdown() {
	p.queue.Shutdown()
	p.mu.Lock()
	threads := append([]*Thread(nil), p.threads...)
	p.mu.Unlock()
	for _, th := range threads {
		th.Shutdown()
	}
}
