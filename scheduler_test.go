package pzip

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerFileBudgetBlocksBeyondCapacity(t *testing.T) {
	s := newScheduler(4, 1, 1<<20)
	s.acquireFile()

	acquired := make(chan struct{})
	go func() {
		s.acquireFile()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquireFile should block while the budget of 1 is held")
	case <-time.After(50 * time.Millisecond):
	}

	s.releaseFile()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquireFile never unblocked after releaseFile")
	}
}

func TestSchedulerByteBudgetAdmitsOversizedSingleRequest(t *testing.T) {
	s := newScheduler(4, 4, 100)
	done := make(chan struct{})
	go func() {
		s.acquireBytes(1000) // larger than the whole budget
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("an oversized request should be admitted once usage is zero, not deadlock")
	}
	s.releaseBytes(1000)
}

func TestSchedulerDispatchRunsAllJobs(t *testing.T) {
	s := newScheduler(4, 4, 1<<20)
	var n atomic.Int32
	for i := 0; i < 20; i++ {
		s.dispatch(func() { n.Add(1) })
	}
	s.wait()
	if n.Load() != 20 {
		t.Fatalf("dispatched jobs run = %d, want 20", n.Load())
	}
}
