package scheduler

import "github.com/driftwave/fiberrt/fiber"

// spawnIdle creates a fresh idle fiber and pushes it onto the run queue, if
// one is not already present. The idle fiber's callable is fiber-main: it
// pumps this thread's own queue directly (no yield/switch_to of its own)
// until it decides it can no longer safely reuse itself, at which point it
// returns and the fiber terminates; step then spawns a new one next time the
// run queue is found empty.
func (t *Thread) spawnIdle() {
	if t.idle != nil {
		return
	}
	f := fiber.New(t.idleCallable, fiber.StackSmall)
	t.idle = f
	t.runQ.pushBack(f)
}

// idleCallable implements fiber-main (spec §4.4). It runs entirely inside
// the idle fiber's own goroutine, without ever calling Park itself, except
// indirectly via yieldTo when the reschedule protocol's resumer happens to
// run on this thread (see reschedule.go) — at which point this loop is
// temporarily suspended exactly like any other fiber's yield_to target, and
// resumes once that detour parks again.
func (t *Thread) idleCallable() error {
	self := fiber.CurrentFiber()
	for {
		if t.ep.shutdownRequested() {
			return nil
		}
		startTurn := t.ep.turn()

		if t.qinv.drive() {
			if self.IsCancelable() || t.ep.turn() != startTurn {
				// Not safely reusable: some other fiber is now due to run on
				// this thread, or someone took a long-lived handle on this
				// one's identity. End the callable; the next empty-run-queue
				// step spawns a replacement.
				return nil
			}
			self.RegenerateID()
			continue
		}

		// Queue was empty. If something changed while we were looking, end
		// the idle fiber rather than sleep: thread-main may already have more
		// work queued for a *different* fiber that needs this thread's
		// attention.
		if t.ep.turn() != startTurn || !t.runQ.empty() {
			return nil
		}

		select {
		case <-t.qinv.queue.NotifyChan():
		case <-t.wake:
		case <-t.osWake:
		}
	}
}
