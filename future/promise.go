package future

import "sync"

// Promise is a settable Future. The zero value is not usable; construct one
// with NewPromise.
type Promise struct {
	mu        sync.Mutex
	done      bool
	result    any
	err       error
	waiter    func(any, error)
	onCancel  func()
	cancelled bool
}

var _ Future = (*Promise)(nil)

// NewPromise returns a pending Promise.
func NewPromise() *Promise {
	return &Promise{}
}

// OnCancel installs the hook Cancel invokes, once, the first time Cancel is
// called on a still-pending promise. Intended for producers (e.g. a timer)
// to register teardown logic; not for consumers.
func (p *Promise) OnCancel(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCancel = fn
}

// Resolve settles the promise successfully. A no-op if already settled.
func (p *Promise) Resolve(value any) { p.settle(value, nil) }

// Reject settles the promise with an error. A no-op if already settled.
func (p *Promise) Reject(err error) { p.settle(nil, err) }

func (p *Promise) settle(value any, err error) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.result = value
	p.err = err
	waiter := p.waiter
	p.waiter = nil
	p.mu.Unlock()

	if waiter != nil {
		waiter(value, err)
	}
}

// Subscribe registers callback to run once, when the promise settles. If
// already settled, callback runs synchronously before Subscribe returns.
// Only one subscriber is supported, matching the scheduler's single
// wait_for per parked fiber.
func (p *Promise) Subscribe(callback func(result any, err error)) {
	p.mu.Lock()
	if p.done {
		result, err := p.result, p.err
		p.mu.Unlock()
		callback(result, err)
		return
	}
	p.waiter = callback
	p.mu.Unlock()
}

// Cancel is best-effort: it runs the registered onCancel hook at most once.
// The hook is responsible for eventually settling the promise (typically by
// rejecting it), if that's the desired observable behavior.
func (p *Promise) Cancel() {
	p.mu.Lock()
	if p.done || p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	hook := p.onCancel
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// IsSet reports whether the promise has settled.
func (p *Promise) IsSet() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
