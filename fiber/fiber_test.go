package fiber

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleNormalReturn(t *testing.T) {
	f := New(func() error { return nil }, StackSmall)
	sig := f.Resume()
	require.Equal(t, ParkTerminated, sig.Reason)
	require.NoError(t, sig.Err)
	assert.True(t, f.IsTerminated())
	assert.Equal(t, Terminated, f.State())
}

func TestYieldThenReturn(t *testing.T) {
	var ran int32
	var f *Fiber
	f = New(func() error {
		atomic.AddInt32(&ran, 1)
		if err := f.Park(ParkSuspended, nil, nil); err != nil {
			return err
		}
		atomic.AddInt32(&ran, 1)
		return nil
	}, StackSmall)

	sig := f.Resume()
	require.Equal(t, ParkSuspended, sig.Reason)
	assert.Equal(t, Suspended, f.State())

	sig = f.Resume()
	require.Equal(t, ParkTerminated, sig.Reason)
	require.NoError(t, sig.Err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&ran))
}

type fakeCancelable struct {
	canceled atomic.Bool
}

func (c *fakeCancelable) Cancel() { c.canceled.Store(true) }

func TestCancelPropagatesToAwaitedFuture(t *testing.T) {
	future := &fakeCancelable{}
	parked := make(chan struct{})
	resumeResult := make(chan error, 1)

	var f *Fiber
	f = New(func() error {
		err := f.Park(ParkSleeping, nil, future)
		resumeResult <- err
		return err
	}, StackSmall)

	go func() {
		sig := f.Resume()
		require.Equal(t, ParkSleeping, sig.Reason)
		close(parked)
	}()
	<-parked

	f.Cancel()
	assert.True(t, future.canceled.Load(), "canceling a sleeping fiber must cancel its awaited future")

	sig := f.Resume()
	assert.Equal(t, ParkTerminated, sig.Reason)
	assert.ErrorIs(t, sig.Err, ErrCanceled)
	assert.ErrorIs(t, <-resumeResult, ErrCanceled)
}

func TestCancelIsObservedAtNextSuspensionPoint(t *testing.T) {
	var f *Fiber
	f = New(func() error {
		for i := 0; i < 1000; i++ {
			if err := f.Park(ParkSuspended, nil, nil); err != nil {
				return err
			}
		}
		return nil
	}, StackSmall)

	// Run the fiber to its first suspension point, where it is merely
	// Suspended (not Sleeping) - cancel here must not be discovered until
	// the fiber is resumed again.
	sig := f.Resume()
	require.Equal(t, ParkSuspended, sig.Reason)

	f.Cancel()
	assert.True(t, f.IsCanceled())
	assert.NotEqual(t, Terminated, f.State(), "cancel on a suspended fiber must not terminate it until resumed")

	sig = f.Resume()
	require.Equal(t, ParkTerminated, sig.Reason)
	assert.ErrorIs(t, sig.Err, ErrCanceled)
}

func TestFiberLocalStorageDestructorOrder(t *testing.T) {
	var order []int
	slotA := ReserveSlot(func(v any) { order = append(order, v.(int)) })
	slotB := ReserveSlot(func(v any) { order = append(order, v.(int)) })

	var f *Fiber
	f = New(func() error {
		*f.FLSAt(slotA) = 10
		*f.FLSAt(slotB) = 20
		return nil
	}, StackSmall)

	f.Resume()
	assert.Equal(t, []int{10, 20}, order)
}

func TestContextHandlersFireInNestingOrder(t *testing.T) {
	var trace []string
	var f *Fiber
	f = New(func() error {
		return f.Park(ParkSuspended, nil, nil)
	}, StackSmall)

	f.PushContextHandlers(
		func() { trace = append(trace, "outerOut") },
		func() { trace = append(trace, "outerIn") },
	)
	f.PushContextHandlers(
		func() { trace = append(trace, "innerOut") },
		func() { trace = append(trace, "innerIn") },
	)

	f.Resume()
	f.Resume()

	assert.Equal(t, []string{"innerOut", "outerOut", "outerIn", "innerIn"}, trace)
}

func TestRegenerateIDIsUnique(t *testing.T) {
	f := New(func() error { return nil }, StackSmall)
	id1 := f.ID()
	id2 := f.RegenerateID()
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, id2, f.ID())
}

func TestCancelerHandleCancelsFiber(t *testing.T) {
	f := New(func() error { return nil }, StackSmall)
	c := f.Canceler()
	assert.True(t, f.IsCancelable())
	c.Cancel()
	assert.True(t, f.IsCanceled())
}
