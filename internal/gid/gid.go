// Package gid recovers the calling goroutine's runtime id by parsing it out
// of a runtime.Stack dump, used to recognize a specific goroutine across
// calls. There is no supported API for this in the standard library; every
// package in this module that needs a thread-local-like lookup keyed by
// "which goroutine am I" shares this one implementation instead of
// re-deriving it.
package gid

import "runtime"

// Current parses the current goroutine's id out of runtime.Stack.
func Current() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
