package scheduler

import (
	"github.com/joeycumines/go-catrate"

	"github.com/driftwave/fiberrt/metrics"
)

// ThreadOption configures optional Thread behavior beyond its required name,
// queue and logger, following the standard functional-option pattern.
type ThreadOption interface {
	applyThread(*threadOptions)
}

type threadOptions struct {
	metrics metrics.Sink
	drops   *catrate.Limiter
}

type threadOptionFunc func(*threadOptions)

func (f threadOptionFunc) applyThread(o *threadOptions) { f(o) }

// WithMetrics reports every callable this thread drives to sink, as
// "scheduler.wait_time" and "scheduler.run_time" observations (seconds)
// tagged with the thread's name. Nil sink (the default) discards these.
func WithMetrics(sink metrics.Sink) ThreadOption {
	return threadOptionFunc(func(o *threadOptions) { o.metrics = sink })
}

// WithDropLimiter rate-limits the "invoker: dropped callable" warning a
// thread logs when work arrives after its own queue has already shut down.
// Nil (the default) logs every drop.
func WithDropLimiter(l *catrate.Limiter) ThreadOption {
	return threadOptionFunc(func(o *threadOptions) { o.drops = l })
}

func resolveThreadOptions(opts []ThreadOption) threadOptions {
	o := threadOptions{metrics: metrics.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt.applyThread(&o)
		}
	}
	return o
}
