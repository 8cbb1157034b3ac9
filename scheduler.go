package pzip

import (
	"sync"

	"github.com/remeh/sizedwaitgroup"
)

// scheduler owns the worker pool and the two budgets that bound how much
// work can be in flight at once: an open-file budget (bounds concurrently
// memory-mapped inputs) and an in-flight byte budget (bounds the
// uncompressed bytes of dispatched chunks not yet flushed by the Writer;
// compressed output is not counted). The worker pool reuses the teacher's
// sizedwaitgroup, the same library it uses to bound its own parallel
// extraction fan-out in extract.go, generalized here from
// one-goroutine-per-file to one-goroutine-per-chunk-job. The budgets
// themselves are a small hand-rolled counting semaphore guarded by a
// mutex and condition variable, matching the teacher's general preference
// for plain primitives (atomic counters, channels) over a generic
// semaphore library.
type scheduler struct {
	pool sizedwaitgroup.SizedWaitGroup

	mu        sync.Mutex
	cond      *sync.Cond
	openFiles int
	fileCap   int
	bytesUsed int64
	byteCap   int64
}

// newScheduler builds a scheduler with threads workers, an open-file
// semaphore of capacity openFileBudget, and a byte semaphore of capacity
// byteBudget.
func newScheduler(threads, openFileBudget int, byteBudget int64) *scheduler {
	s := &scheduler{
		pool:    sizedwaitgroup.New(threads),
		fileCap: openFileBudget,
		byteCap: byteBudget,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// acquireFile blocks until a unit of the open-file budget is free, used
// before memory-mapping a FilePath input.
func (s *scheduler) acquireFile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.openFiles >= s.fileCap {
		s.cond.Wait()
	}
	s.openFiles++
}

// releaseFile returns a unit of the open-file budget, called once a
// mapping is dropped (after the Writer has flushed the entry).
func (s *scheduler) releaseFile() {
	s.mu.Lock()
	s.openFiles--
	s.mu.Unlock()
	s.cond.Broadcast()
}

// acquireBytes blocks until n bytes of the in-flight byte budget are
// free, called on chunk dispatch. A request larger than the whole budget
// is admitted alone (once current usage drains to zero) rather than
// deadlocking forever — the budget is back-pressure, not a hard ceiling
// on any single chunk.
func (s *scheduler) acquireBytes(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.bytesUsed > 0 && s.bytesUsed+n > s.byteCap {
		s.cond.Wait()
	}
	s.bytesUsed += n
}

// releaseBytes returns n bytes to the in-flight byte budget, called once
// the chunk's compressed output has been flushed by the Writer.
func (s *scheduler) releaseBytes(n int64) {
	s.mu.Lock()
	s.bytesUsed -= n
	s.mu.Unlock()
	s.cond.Broadcast()
}

// dispatch submits fn to run on a pool worker, blocking if the pool is
// already running threads workers.
func (s *scheduler) dispatch(fn func()) {
	s.pool.Add()
	go func() {
		defer s.pool.Done()
		fn()
	}()
}

// wait blocks until every dispatched job has completed.
func (s *scheduler) wait() {
	s.pool.Wait()
}
