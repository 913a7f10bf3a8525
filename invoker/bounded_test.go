package invoker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBoundedConcurrencyLimit(t *testing.T) {
	b := NewBounded(&directInvoker{}, 3)

	var running atomic.Int32
	var maxObserved atomic.Int32
	var wg sync.WaitGroup
	const n = 10
	wg.Add(n)
	for i := 0; i < n; i++ {
		b.Invoke(func() {
			defer wg.Done()
			cur := running.Add(1)
			for {
				max := maxObserved.Load()
				if cur <= max || maxObserved.CompareAndSwap(max, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		})
	}
	wg.Wait()
	require.LessOrEqual(t, int32(maxObserved.Load()), int32(3))
	require.EqualValues(t, 3, maxObserved.Load(), "should reach the concurrency limit, not stay under-scheduled")
	require.Equal(t, 0, b.Running())
}

func TestBoundedDrainsQueueAfterEachCompletion(t *testing.T) {
	b := NewBounded(&directInvoker{}, 1)
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	const n = 20
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		b.Invoke(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()
	require.Len(t, order, n)
}
