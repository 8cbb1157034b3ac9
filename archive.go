package pzip

import (
	"os"
	"path/filepath"
	"sync"
)

// Archive is the public entry point: OpenArchive, then any number of Write
// and EnqueuePrecompressed calls in any goroutine, then exactly one Close
// (or Abort). Submission order across both calls is the order entries land
// in the output ZIP's central directory.
type Archive struct {
	opts    Options
	sched   *scheduler
	planner *planner
	writer  *writer

	queue   chan *entryFuture
	drainWg sync.WaitGroup

	mu      sync.Mutex
	entryID uint64
	closed  bool
}

// OpenArchive creates path exclusively (it must not already exist) and
// returns an Archive ready to accept entries. Grounded on the teacher's
// create.go entry point, reshaped from a one-shot CLI command into a
// long-lived handle with an explicit Close.
func OpenArchive(path string, opts Options) (*Archive, error) {
	opts = opts.withDefaults()

	if opts.PreflightDiskSpace {
		if err := checkDiskSpace(filepath.Dir(path), int(opts.ByteBudget)); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, newErr(KindOutputIO, "", err)
	}

	sched := newScheduler(opts.Threads, opts.OpenFileBudget, opts.ByteBudget)
	pl := &planner{
		sched:            sched,
		chooser:          opts.Chooser,
		deflateChunkSize: opts.DeflateChunkSize,
		digestAlgo:       opts.DigestAlgorithm,
		sink:             opts.Sink,
	}
	wr := newWriter(f, path, opts.DigestAlgorithm, opts.Sink, opts.debugFlags.isSet(flagWriteZip64Always))

	a := &Archive{
		opts:    opts,
		sched:   sched,
		planner: pl,
		writer:  wr,
		queue:   make(chan *entryFuture, 1024),
	}

	a.drainWg.Add(1)
	go a.drain()
	return a, nil
}

// drain is the single goroutine that owns the Writer: it pulls futures off
// the queue in submission order and feeds them to writer.consume, so
// entries land in the output in submission order even though they may
// finish planning out of order.
func (a *Archive) drain() {
	defer a.drainWg.Done()
	for fut := range a.queue {
		a.writer.consume(fut)
	}
}

// Write submits one entry for compression and enqueues it for writing.
// Name is validated immediately so a bad name is reported at the call
// site rather than surfacing later from Close.
func (a *Archive) Write(src Source, name string, opts ...WriteOption) error {
	if err := validateName(name); err != nil {
		return err
	}

	var wopts writeOptions
	for _, o := range opts {
		o(&wopts)
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return newErr(KindInconsistent, name, errArchiveClosed)
	}
	a.entryID++
	id := a.entryID
	a.mu.Unlock()

	fut := a.planner.plan(id, name, src, wopts)
	a.mu.Lock()
	closed := a.closed
	if !closed {
		a.queue <- fut
	}
	a.mu.Unlock()
	if closed {
		return newErr(KindInconsistent, name, errArchiveClosed)
	}
	return nil
}

// EnqueuePrecompressed submits a splice candidate: its bytes are copied
// verbatim from an existing archive, with no planner or worker involvement.
func (a *Archive) EnqueuePrecompressed(p PrecompressedEntry) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return newErr(KindInconsistent, p.Name, errArchiveClosed)
	}
	a.mu.Unlock()

	fut := spliceFuture(p)
	a.mu.Lock()
	closed := a.closed
	if !closed {
		a.queue <- fut
	}
	a.mu.Unlock()
	if closed {
		return newErr(KindInconsistent, p.Name, errArchiveClosed)
	}
	return nil
}

// Close drains every queued entry in submission order, writes the central
// directory and EOCD, and closes the output file. The first archive-fatal
// error encountered, if any, is returned; on such an error the output path
// does not exist.
func (a *Archive) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	close(a.queue)
	a.drainWg.Wait()
	return a.writer.close()
}

// Abort discards every queued entry without writing it and removes the
// partially written output file.
func (a *Archive) Abort() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.writer.aborted.Store(true)
	a.mu.Unlock()

	close(a.queue)
	a.drainWg.Wait()
	a.writer.abort()
	return nil
}
