// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package invoker implements the policy wrappers the scheduler composes on
// top of a raw invoker queue: serialized, prioritized, fixed-priority,
// bounded-concurrency, and suspendable. Every wrapper delegates to an
// underlying Invoker and adds exactly one scheduling discipline, per spec
// §4.5 ("Invoker wrappers ... All wrappers delegate to an underlying invoker
// and add a scheduling policy").
package invoker
