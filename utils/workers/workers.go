// Package workers runs queued closures on a fixed set of goroutines.
package workers

import (
	"errors"
	"sync"
)

// ErrTerminated is returned by Enqueue after quit is closed.
var ErrTerminated = errors.New("workers terminated")

// Workers is a bounded task queue. The goroutines are accounted in the
// owner's WaitGroup and stop when the owner closes quit.
type Workers struct {
	tasks chan func()
	quit  <-chan struct{}
	wg    *sync.WaitGroup
}

func New(wg *sync.WaitGroup, quit <-chan struct{}, maxTasks int) *Workers {
	return &Workers{
		tasks: make(chan func(), maxTasks),
		quit:  quit,
		wg:    wg,
	}
}

// Start n goroutines. With n == 1 tasks run in the enqueue order.
func (w *Workers) Start(n int) {
	w.wg.Add(n)
	for i := 0; i < n; i++ {
		go w.loop()
	}
}

func (w *Workers) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.quit:
			return
		case task := <-w.tasks:
			task()
		}
	}
}

// Enqueue blocks while the queue is full.
func (w *Workers) Enqueue(task func()) error {
	select {
	case <-w.quit:
		return ErrTerminated
	default:
	}
	select {
	case w.tasks <- task:
		return nil
	case <-w.quit:
		return ErrTerminated
	}
}

// Drain discards the queued tasks which haven't started yet.
func (w *Workers) Drain() {
	for {
		select {
		case <-w.tasks:
		default:
			return
		}
	}
}

func (w *Workers) TasksCount() int {
	return len(w.tasks)
}
