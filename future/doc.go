// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package future defines the scheduler's boundary contract for asynchronous
// results: subscribe, cancel, is-set. It is deliberately not a full
// Promise/A+ implementation - no Then/Catch chaining, no combinators - since
// the scheduler only ever needs to attach one completion callback and issue
// a best-effort cancel.
//
// Promise is a plain single-subscriber promise type, trimmed of any
// fan-out-to-many-listeners machinery (the scheduler subscribes at most once
// per wait) and given a Cancel/OnCancel hook so settlement can be driven
// from cancelable external work (a timer, an RPC call) rather than only
// from an internal callback.
package future
