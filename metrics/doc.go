// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package metrics provides the write-only, non-blocking observation sink the
// scheduler reports through, and a streaming percentile Histogram built on
// the P-Square algorithm (Jain & Chlamtac, 1985) (see psquare.go). The
// underlying estimator is single-quantile and single-threaded; Histogram
// tracks p50/p90/p99 simultaneously (three independent estimators fed the
// same observation) behind one mutex, since the scheduler's own reporting
// call sites (queue wait time and run time) are not hot enough to need
// lock-free fan-out.
package metrics
