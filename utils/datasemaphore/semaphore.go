// Package datasemaphore limits the amount of data in flight, counted both
// in items and in bytes.
package datasemaphore

import (
	"sync"
	"time"

	"github.com/Fantom-foundation/vertexdag/inter/dag"
)

// DataSemaphore admits a dag.Metric while the sum of admitted metrics stays within the limit.
type DataSemaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	limit dag.Metric
	held  dag.Metric

	// onUnderflow is called when more is released than held.
	onUnderflow func(held, releasing dag.Metric)
}

func New(limit dag.Metric, onUnderflow func(held, releasing dag.Metric)) *DataSemaphore {
	s := &DataSemaphore{
		limit:       limit,
		onUnderflow: onUnderflow,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *DataSemaphore) fits(m dag.Metric) bool {
	return s.held.Num+m.Num <= s.limit.Num && s.held.Size+m.Size <= s.limit.Size
}

// Acquire blocks until m fits or the timeout expires.
// It fails at once if m exceeds the whole limit or the semaphore is terminated.
func (s *DataSemaphore) Acquire(m dag.Metric, timeout time.Duration) bool {
	expired := false
	timer := time.AfterFunc(timeout, func() {
		s.mu.Lock()
		expired = true
		s.mu.Unlock()
		s.cond.Broadcast()
	})
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.fits(m) {
		if expired || m.Num > s.limit.Num || m.Size > s.limit.Size {
			return false
		}
		s.cond.Wait()
	}
	s.held.Num += m.Num
	s.held.Size += m.Size
	return true
}

func (s *DataSemaphore) TryAcquire(m dag.Metric) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fits(m) {
		return false
	}
	s.held.Num += m.Num
	s.held.Size += m.Size
	return true
}

func (s *DataSemaphore) Release(m dag.Metric) {
	s.mu.Lock()
	if m.Num > s.held.Num || m.Size > s.held.Size {
		if s.onUnderflow != nil {
			s.onUnderflow(s.held, m)
		}
		s.held = dag.Metric{}
	} else {
		s.held.Num -= m.Num
		s.held.Size -= m.Size
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Terminate drops the limit to zero, failing every pending and future Acquire.
func (s *DataSemaphore) Terminate() {
	s.mu.Lock()
	s.limit = dag.Metric{}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Processing is the amount currently held.
func (s *DataSemaphore) Processing() dag.Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

func (s *DataSemaphore) Available() dag.Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	var free dag.Metric
	if s.limit.Num > s.held.Num {
		free.Num = s.limit.Num - s.held.Num
	}
	if s.limit.Size > s.held.Size {
		free.Size = s.limit.Size - s.held.Size
	}
	return free
}
