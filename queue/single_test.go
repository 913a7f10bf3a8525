package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleConsumerQueueFIFOOrder(t *testing.T) {
	q := NewSingleConsumerQueue()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, q.Invoke(Record{Callable: func() { order = append(order, i) }}))
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		r, err := q.BeginExecute()
		require.NoError(t, err)
		r.Callable()
		q.EndExecute(r)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.True(t, q.IsEmpty())
}

func TestSingleConsumerQueueBeginExecuteOnEmpty(t *testing.T) {
	q := NewSingleConsumerQueue()
	_, err := q.BeginExecute()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSingleConsumerQueueShutdownDropsInvoke(t *testing.T) {
	q := NewSingleConsumerQueue()
	require.NoError(t, q.Invoke(Record{Callable: func() {}}))
	q.Shutdown()
	assert.False(t, q.IsRunning())

	err := q.Invoke(Record{Callable: func() {}})
	assert.ErrorIs(t, err, ErrShutdown)
	assert.Equal(t, 1, q.Len(), "record enqueued before shutdown must survive for Drain")

	drained := q.Drain()
	require.Len(t, drained, 1)
	assert.True(t, q.IsEmpty())
}

func TestSingleConsumerQueueNotifyChanWakesOnInvoke(t *testing.T) {
	q := NewSingleConsumerQueue()
	select {
	case <-q.NotifyChan():
		t.Fatal("notify channel should be empty before any Invoke")
	default:
	}

	require.NoError(t, q.Invoke(Record{Callable: func() {}}))
	select {
	case <-q.NotifyChan():
	default:
		t.Fatal("expected a pending notification after Invoke")
	}
}

func TestSingleConsumerQueueManyChunksRoundTrip(t *testing.T) {
	q := NewSingleConsumerQueue()
	const n = chunkSize*3 + 7
	for i := 0; i < n; i++ {
		require.NoError(t, q.Invoke(Record{Callable: func() {}}))
	}
	assert.Equal(t, n, q.Len())

	count := 0
	for {
		_, err := q.BeginExecute()
		if err != nil {
			break
		}
		count++
	}
	assert.Equal(t, n, count)
}
