package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driftwave/fiberrt/fiber"
)

func TestPoolGrowAndShrink(t *testing.T) {
	p := NewPool("workers", 2, nil)
	require.Equal(t, 2, p.Len())

	p.Configure(4)
	require.Equal(t, 4, p.Len())

	p.Configure(1)
	require.Equal(t, 1, p.Len())

	p.Shutdown()
}

func TestPoolDistributesWorkAcrossThreads(t *testing.T) {
	p := NewPool("workers", 3, nil)
	t.Cleanup(p.Shutdown)

	const jobs = 50
	var completed atomic.Int32
	done := make(chan struct{})

	for i := 0; i < jobs; i++ {
		p.Invoker().Invoke(func() {
			if completed.Add(1) == jobs {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}

func TestPoolSpawnedFiberRunsOnMemberThread(t *testing.T) {
	p := NewPool("workers", 2, nil)
	t.Cleanup(p.Shutdown)

	done := make(chan error, 1)
	require.NoError(t, p.threads[0].Spawn(func() error {
		done <- nil
		return nil
	}, fiber.StackSmall))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}
