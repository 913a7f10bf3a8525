package fiber

import (
	"sync"
	"sync/atomic"
)

// slotCount is the process-wide count of reserved fiber-local-storage slots.
var slotCount atomic.Int32

// slotDestructors holds the destructor registered for each slot index, if
// any. Grown under slotMu, read without locking elsewhere since it is only
// ever appended to (never shrunk) and indices are stable once reserved.
var (
	slotMu          sync.Mutex
	slotDestructors []func(any)
)

// ReserveSlot reserves a new fiber-local-storage slot, globally, for the
// process lifetime, and returns its index. destructor, if non-nil, is
// invoked with the slot's value when an owning fiber is destroyed, in
// slot-index order relative to other reserved slots.
//
// Slot indices are a process-wide resource, allocated once and shared across
// every fiber's local-storage slice, not scoped to any one fiber.
func ReserveSlot(destructor func(any)) int {
	slotMu.Lock()
	defer slotMu.Unlock()
	idx := int(slotCount.Add(1)) - 1
	slotDestructors = append(slotDestructors, destructor)
	return idx
}

// FLSAt returns a pointer to fiber-local-storage slot index, growing the
// slot vector if needed. Owner-only: only the fiber's own goroutine may call
// this safely, since growth is a single-writer operation; concurrent readers
// are not supported by design (the spec requires only the owner ever reads
// or writes FLS).
func (f *Fiber) FLSAt(index int) *any {
	if index >= len(f.fls) {
		grown := make([]any, index+1)
		copy(grown, f.fls)
		f.fls = grown
	}
	return &f.fls[index]
}

// runFLSDestructors invokes every registered slot destructor, in slot-index
// order, for whatever values are present in f.fls. Called once, when f is
// terminated and its last reference is about to be released.
func (f *Fiber) runFLSDestructors() {
	for i, v := range f.fls {
		if v == nil {
			continue
		}
		if i < len(slotDestructors) && slotDestructors[i] != nil {
			slotDestructors[i](v)
		}
	}
}
