// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package queue implements the invoker queue primitives: a FIFO of enqueued
// callables augmented with scheduler bookkeeping (enqueue/start/finish
// timestamps, optional profiling tags).
//
// SingleConsumerQueue assumes exactly one goroutine ever calls BeginExecute/
// EndExecute, matching a scheduler thread's private run loop.
// MultiConsumerQueue relaxes that to tolerate concurrent consumers, for use
// by thread pools.
//
// Both variants are built on the same chunked linked-list storage, chosen
// because a plain mutex around a chunked list outperforms a lock-free ring
// under the contention these queues actually see in practice.
// MultiConsumerQueue layers an optimistic atomic size counter with a bounded
// spin-retry on top of that same mutex-protected storage rather than reaching
// for a lock-free ring buffer, because a lock-free ring of that shape is
// inherently single-consumer (its pop side assumes one dedicated reader) and
// cannot serve the multi-consumer contract.
package queue
