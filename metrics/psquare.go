package metrics

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// pSquare is the P-Square streaming quantile estimator (Jain & Chlamtac,
// 1985): O(1) per-observation update and retrieval, no retained sample
// history. Not safe for concurrent use.
//
// Parameterized over constraints.Float the same way go-catrate's ring
// buffer (ring.go) parameterizes over constraints.Ordered: Histogram only
// ever instantiates pSquare[float64], but the estimator itself has no
// dependency on float64 specifically, so it is written once for any
// floating-point sample type rather than hard-coded to the one
// Sink.Observe happens to use.
type pSquare[T constraints.Float] struct {
	p           T
	q           [5]T
	n           [5]int
	np          [5]T
	dn          [5]T
	count       int
	initBuffer  [5]T
	initialized bool
}

func newPSquare[T constraints.Float](p T) *pSquare[T] {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &pSquare[T]{p: p, dn: [5]T{0, p / 2, p, (1 + p) / 2, 1}}
}

func (ps *pSquare[T]) update(x T) {
	ps.count++
	if ps.count <= 5 {
		ps.initBuffer[ps.count-1] = x
		if ps.count == 5 {
			ps.initialize()
		}
		return
	}

	var k int
	switch {
	case x < ps.q[0]:
		ps.q[0] = x
		k = 0
	case x >= ps.q[4]:
		ps.q[4] = x
		k = 3
	default:
		for k = 0; k < 4; k++ {
			if ps.q[k] <= x && x < ps.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		ps.n[i]++
	}
	for i := 0; i < 5; i++ {
		ps.np[i] += ps.dn[i]
	}

	for i := 1; i < 4; i++ {
		d := ps.np[i] - T(ps.n[i])
		if (d >= 1 && ps.n[i+1]-ps.n[i] > 1) || (d <= -1 && ps.n[i-1]-ps.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			qPrime := ps.parabolic(i, sign)
			if ps.q[i-1] < qPrime && qPrime < ps.q[i+1] {
				ps.q[i] = qPrime
			} else {
				ps.q[i] = ps.linear(i, sign)
			}
			ps.n[i] += sign
		}
	}
}

func (ps *pSquare[T]) initialize() {
	sort.Slice(ps.initBuffer[:], func(i, j int) bool { return ps.initBuffer[i] < ps.initBuffer[j] })
	for i := 0; i < 5; i++ {
		ps.q[i] = ps.initBuffer[i]
		ps.n[i] = i
	}
	ps.np = [5]T{0, 2 * ps.p, 4 * ps.p, 2 + 2*ps.p, 4}
	ps.initialized = true
}

func (ps *pSquare[T]) parabolic(i, d int) T {
	df := T(d)
	ni, niPrev, niNext := T(ps.n[i]), T(ps.n[i-1]), T(ps.n[i+1])
	term1 := df / (niNext - niPrev)
	term2 := (ni - niPrev + df) * (ps.q[i+1] - ps.q[i]) / (niNext - ni)
	term3 := (niNext - ni - df) * (ps.q[i] - ps.q[i-1]) / (ni - niPrev)
	return ps.q[i] + term1*(term2+term3)
}

func (ps *pSquare[T]) linear(i, d int) T {
	if d == 1 {
		return ps.q[i] + (ps.q[i+1]-ps.q[i])/T(ps.n[i+1]-ps.n[i])
	}
	return ps.q[i] - (ps.q[i]-ps.q[i-1])/T(ps.n[i]-ps.n[i-1])
}

func (ps *pSquare[T]) quantile() T {
	if ps.count == 0 {
		return 0
	}
	if ps.count < 5 {
		sorted := append([]T(nil), ps.initBuffer[:ps.count]...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		idx := int(T(ps.count-1) * ps.p)
		if idx >= ps.count {
			idx = ps.count - 1
		}
		return sorted[idx]
	}
	return ps.q[2]
}
