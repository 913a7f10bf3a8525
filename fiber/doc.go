// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package fiber implements the execution-context layer of the runtime: a
// user-space unit of execution with a stable identity, per-fiber local
// storage, a one-shot cancellation flag, and a small list of context-switch
// handlers.
//
// # Execution model
//
// Go has no portable primitive for saving and restoring a raw register set
// and stack pointer, so a Fiber does not own a pooled stack the way a
// fiber implementation built on raw context switches would. Instead each
// Fiber owns exactly one goroutine, gated by a pair of unbuffered rendezvous
// channels (resumeCh/parkCh). The scheduler that drives a Fiber sends on
// resumeCh to hand control to it and then blocks receiving from parkCh; the
// Fiber's goroutine blocks on resumeCh at every suspension point and sends
// on parkCh when it suspends or terminates. Because neither side proceeds
// until the other has rendezvoused, at most one of {driving scheduler
// thread, fiber goroutine} is ever doing work for a given Fiber at a time -
// reproducing the single-owner-thread, non-preemptive invariant a raw
// context switch gives for free, using goroutines as stacks instead.
package fiber
