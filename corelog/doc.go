// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package corelog is the structured, append-only, non-blocking logging
// boundary the rest of this module reports through (spec §6's Logger, and
// §1's ambient-stack logging requirement). It is a thin instantiation of
// github.com/joeycumines/logiface, the same structured-logging facade used
// for this module's direct logging dependency, over the
// github.com/joeycumines/stumpy JSON writer sourced from the pack's sibling
// logiface-stumpy repo.
package corelog
