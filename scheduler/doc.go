// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package scheduler implements the scheduler thread, the wait/suspend
// protocol, thread pools, the fair-share discipline, and the process-global
// finalizer thread (spec §4.4, §4.6, §4.7, §4.8), plus the package-level
// public API (§4.9): CurrentScheduler, CurrentFiberID, Yield, SwitchTo,
// WaitFor, and the context-switch subscription pair.
//
// A Thread is, under this module's goroutine-based translation of a raw
// register context switch (see the fiber package doc comment for the
// translation's rationale), a single goroutine running a two-level loop:
//
//   - thread-main: pops the next ready fiber (spawning a reusable idle
//     fiber if the run queue is empty), resumes it via fiber.Fiber.Resume,
//     and classifies the ParkSignal it parks with.
//   - fiber-main: runs inside the idle fiber, pumping the thread's own
//     invoker queue (begin_execute/end_execute) whenever no user fiber is
//     ready, exactly as §4.4 describes.
//
// Fibers move between threads by being rescheduled onto a different
// invoker (see reschedule.go): a fiber's "owner thread" is whichever
// Thread most recently called fiber.Fiber.Resume on it, recorded on the
// fiber itself via fiber.Fiber.SetScratch so the public API can recover
// "the current scheduler" from inside a fiber's callable, where no Thread
// value is otherwise in scope.
package scheduler
