package scheduler

import (
	"github.com/driftwave/fiberrt/fiber"
	"github.com/driftwave/fiberrt/future"
	"github.com/driftwave/fiberrt/invoker"
)

// sleepMeta is the ParkSleeping payload a fiber leaves behind when it calls
// switch_to or wait_for: the future it is awaiting (nil for switch_to, and
// for wait_for calls with no future argument meaning "resume immediately")
// and the invoker it should resume on (nil meaning "the current invoker",
// resolved by reschedule to the parking thread's own invoker).
type sleepMeta struct {
	future  future.Future
	invoker invoker.Invoker
}

// shutdownAware is implemented by QueueInvoker. The reschedule protocol's
// guarded post uses it to detect a target invoker that can never run the
// resumer, so a fiber parked waiting on a future that completes after its
// target invoker has shut down still gets woken, via the unwinder, instead
// of being left to sleep forever.
type shutdownAware interface {
	IsRunning() bool
}

func guardedPost(inv invoker.Invoker, onRun, onTerminated func()) {
	if sa, ok := inv.(shutdownAware); ok && !sa.IsRunning() {
		onTerminated()
		return
	}
	inv.Invoke(onRun)
}

// reschedule implements §4.4's "Reschedule of a Sleeping fiber": f has just
// parked, optionally awaiting fut, to be resumed on target (nil meaning this
// thread's own invoker).
func (t *Thread) reschedule(f *fiber.Fiber, fut future.Future, target invoker.Invoker) {
	if target == nil {
		target = t.qinv
	}
	can := f.Canceler()

	resumer := func() {
		if err := f.SetSuspended(); err != nil {
			return
		}
		_ = yieldTo(f)
	}
	unwinder := func() {
		can.Cancel()
		finalizerInvoker().Invoke(resumer)
	}

	if fut != nil {
		fut.Subscribe(func(any, error) {
			guardedPost(target, resumer, unwinder)
		})
		return
	}
	guardedPost(target, resumer, unwinder)
}

// yieldTo is the primitive backing the reschedule protocol's resumer: it
// parks the calling fiber with ParkYieldTo, naming target as the fiber to
// resume directly in its place. The public Yield/SwitchTo/WaitFor API
// (api.go) parks with ParkSleeping and is resumed through it. Must be called
// from a fiber's own goroutine.
func yieldTo(target *fiber.Fiber) error {
	cur := fiber.CurrentFiber()
	if cur == nil {
		return ErrNotOnScheduler
	}
	return cur.Park(fiber.ParkYieldTo, target, nil)
}
