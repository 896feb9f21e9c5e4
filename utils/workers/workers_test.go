package workers

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkers(t *testing.T) {
	wg := &sync.WaitGroup{}
	quit := make(chan struct{})
	w := New(wg, quit, 10)
	w.Start(3)

	var done int32
	tasks := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		tasks.Add(1)
		require.NoError(t, w.Enqueue(func() {
			atomic.AddInt32(&done, 1)
			tasks.Done()
		}))
	}
	tasks.Wait()
	require.Equal(t, int32(100), atomic.LoadInt32(&done))

	close(quit)
	wg.Wait()
	require.Equal(t, ErrTerminated, w.Enqueue(func() {}))
}

func TestWorkersOrdered(t *testing.T) {
	wg := &sync.WaitGroup{}
	quit := make(chan struct{})
	w := New(wg, quit, 4)
	w.Start(1)

	var (
		mu  sync.Mutex
		got []int
	)
	tasks := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		i := i
		tasks.Add(1)
		require.NoError(t, w.Enqueue(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			tasks.Done()
		}))
	}
	tasks.Wait()
	close(quit)
	wg.Wait()

	for i, v := range got {
		require.Equal(t, i, v)
	}
	require.Len(t, got, 50)
}
