package scheduler

import "github.com/driftwave/fiberrt/fiber"

// runDeque is a Thread's private run queue of ready fibers (spec's
// "run_queue (front-loaded)"): new fibers and rescheduled ones are pushed
// to the back; yield_to pushes the fiber it is stepping away from onto the
// front, so that fiber resumes next, ahead of anything already waiting.
// Never touched by any goroutine other than the owning Thread's own.
type runDeque struct {
	items []*fiber.Fiber
}

func (q *runDeque) pushBack(f *fiber.Fiber) {
	q.items = append(q.items, f)
}

func (q *runDeque) pushFront(f *fiber.Fiber) {
	q.items = append(q.items, nil)
	copy(q.items[1:], q.items)
	q.items[0] = f
}

func (q *runDeque) popFront() (*fiber.Fiber, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	f := q.items[0]
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = nil
	q.items = q.items[:len(q.items)-1]
	return f, true
}

func (q *runDeque) empty() bool { return len(q.items) == 0 }

func (q *runDeque) len() int { return len(q.items) }
