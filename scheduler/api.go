package scheduler

import (
	"github.com/driftwave/fiberrt/fiber"
	"github.com/driftwave/fiberrt/future"
	"github.com/driftwave/fiberrt/invoker"
)

// InvalidFiberID is returned by CurrentFiberID when called from a goroutine
// that is not a fiber's backing goroutine. Fiber ids are assigned starting
// at 1, so 0 is never a real id.
const InvalidFiberID = 0

// currentThread recovers the Thread driving the calling goroutine's fiber,
// via the scratch value the thread-main loop stashes before every Resume.
func currentThread() *Thread {
	f := fiber.CurrentFiber()
	if f == nil {
		return nil
	}
	th, _ := f.Scratch().(*Thread)
	return th
}

// CurrentScheduler returns the Thread driving the calling goroutine. Panics
// if the caller is not running inside a fiber owned by a Thread.
func CurrentScheduler() *Thread {
	th := currentThread()
	if th == nil {
		panic(ErrNotOnScheduler)
	}
	return th
}

// TryCurrentScheduler is CurrentScheduler without the panic.
func TryCurrentScheduler() (*Thread, bool) {
	th := currentThread()
	return th, th != nil
}

// CurrentFiberID returns the id of the fiber running on the calling
// goroutine, or InvalidFiberID if it is not a fiber's backing goroutine.
func CurrentFiberID() uint64 {
	f := fiber.CurrentFiber()
	if f == nil {
		return InvalidFiberID
	}
	return f.ID()
}

// Yield is wait_for(completed_future): it forces a round-trip through the
// scheduler without waiting on anything, giving other ready fibers a turn.
func Yield() error {
	return WaitFor(future.Completed, nil)
}

// SwitchTo parks the current fiber and resumes it on inv. Must be called
// from a fiber's own goroutine.
func SwitchTo(inv invoker.Invoker) error {
	f := fiber.CurrentFiber()
	if f == nil {
		return ErrNotOnScheduler
	}
	return fiber.PropagateCancel(f.Park(fiber.ParkSleeping, sleepMeta{invoker: inv}, nil))
}

// WaitFor parks the current fiber until fut completes, then resumes it on
// inv (nil meaning the current invoker). Returns fiber.ErrCanceled if the
// fiber was cancelled while parked.
func WaitFor(fut future.Future, inv invoker.Invoker) error {
	f := fiber.CurrentFiber()
	if f == nil {
		return ErrNotOnScheduler
	}
	return fiber.PropagateCancel(f.Park(fiber.ParkSleeping, sleepMeta{future: fut, invoker: inv}, fut))
}

// SubscribeContextSwitched installs onOut/onIn as a context-handler pair
// around every subsequent context switch of the current fiber. Must be
// called from a fiber's own goroutine.
func SubscribeContextSwitched(onOut, onIn func()) {
	if f := fiber.CurrentFiber(); f != nil {
		f.PushContextHandlers(onOut, onIn)
	}
}

// UnsubscribeContextSwitched removes the most recently installed handler
// pair. Must be called from a fiber's own goroutine.
func UnsubscribeContextSwitched() {
	if f := fiber.CurrentFiber(); f != nil {
		f.PopContextHandlers()
	}
}
