package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFinalizerInvokerRunsCallables(t *testing.T) {
	done := make(chan struct{})
	finalizerInvoker().Invoke(func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}

func TestFinalizerRefTrackingDrainsCleanly(t *testing.T) {
	finalizerInvoker() // ensure started

	TrackFinalizerRef()
	ran := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		UntrackFinalizerRef()
		close(ran)
	}()

	<-ran
	require.Zero(t, finalizerRefs.Load())
}
