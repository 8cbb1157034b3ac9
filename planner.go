package pzip

import (
	"fmt"
	"io/fs"
	"os"
	"time"
)

// sniffSize is how much of an entry's leading bytes the Chooser sees.
const sniffSize = 16 * 1024

// crcChunkSize is the chunk size used to compute CRC-32 in parallel for
// Store entries, which otherwise do no chunking at all.
const crcChunkSize = 1 << 20 // 1 MiB

// maxChunkSize bounds a single chunk job: no chunk larger than this is ever
// produced, even for an entry that wants a bigger chunk size.
const maxChunkSize = (1 << 32) - 1

// assembledEntry is the Planner's completed output for one entry: either
// an ordered list of compressed chunk payloads, or (for a splice) a raw
// byte-range reader the Writer copies verbatim.
type assembledEntry struct {
	name          string
	method        uint16
	crc32         uint32
	csize         uint64
	usize         uint64
	mtime         time.Time
	atime         *time.Time
	ctime         *time.Time
	mode          fs.FileMode
	digest        []byte
	chunks        [][]byte     // ordered compressed payload; nil for a splice entry
	splice        ReadCloserAt // non-nil => copy exactly csize bytes from here
	acquiredBytes int64        // scheduler byte-budget units reserved for chunks; 0 for a splice or zero-length entry
	releaseBytes  func(int64)  // returns acquiredBytes to the scheduler once the Writer has flushed them; nil if none were reserved
	release       func()       // called once the Writer has flushed the payload
}

// entryFuture is resolved exactly once, by the planner or a worker
// failure, and waited on exactly once, by the Writer.
type entryFuture struct {
	done   chan struct{}
	result *assembledEntry
	err    error
}

func newEntryFuture() *entryFuture { return &entryFuture{done: make(chan struct{})} }

func (f *entryFuture) resolve(a *assembledEntry, err error) {
	f.result, f.err = a, err
	close(f.done)
}

func (f *entryFuture) wait() (*assembledEntry, error) {
	<-f.done
	return f.result, f.err
}

// discard releases an assembled entry's resources without writing it: used
// when the archive has already failed fatally and later futures are only
// drained, never written. Its chunks will never reach the Writer, so the
// byte budget they hold is returned here instead.
func (a *assembledEntry) discard() {
	if a.splice != nil {
		a.splice.Close()
	}
	if a.releaseBytes != nil {
		a.releaseBytes(a.acquiredBytes)
	}
	a.release()
}

// planner partitions each entry's payload into chunks, dispatches chunk
// jobs to the scheduler's pool, and assembles the per-entry result.
// Grounded on the orchestration shape of the teacher's create.go (drive a
// compressor over one file's bytes, track sizes and CRC), adapted here to
// chunk-level fan-out.
type planner struct {
	sched            *scheduler
	chooser          *Chooser
	deflateChunkSize int
	digestAlgo       DigestAlgorithm
	sink             EventSink
}

// plan partitions and dispatches work for one entry and returns a future
// that resolves once every chunk has been compressed and assembled.
func (p *planner) plan(entryID uint64, name string, src Source, wopts writeOptions) *entryFuture {
	fut := newEntryFuture()
	go func() {
		a, err := p.assemble(entryID, name, src, wopts)
		fut.resolve(a, err)
	}()
	return fut
}

func (p *planner) assemble(entryID uint64, name string, src Source, wopts writeOptions) (*assembledEntry, error) {
	var data []byte
	var release func()
	mtime := time.Now()
	mode := wopts.mode
	if mode == 0 {
		mode = 0o644
	}

	switch s := src.(type) {
	case FilePath:
		p.sched.acquireFile()
		f, err := os.Open(s.Path)
		if err != nil {
			p.sched.releaseFile()
			return nil, newErr(KindSourceIO, name, err)
		}
		stat, err := f.Stat()
		if err != nil {
			f.Close()
			p.sched.releaseFile()
			return nil, newErr(KindSourceIO, name, err)
		}
		size := stat.Size()
		mapped, err := mapFile(f, size)
		if err != nil {
			f.Close()
			p.sched.releaseFile()
			return nil, newErr(KindSourceIO, name, err)
		}
		data = mapped.data
		if wopts.mtime == nil {
			mtime = stat.ModTime()
		}
		if wopts.mode == 0 {
			mode = stat.Mode()
		}
		release = func() {
			mapped.unmap()
			f.Close()
			p.sched.releaseFile()
		}

	case Blob:
		data = s.Data

	default:
		return nil, newErr(KindInconsistent, name, fmt.Errorf("unknown source type %T", src))
	}

	if wopts.mtime != nil {
		mtime = *wopts.mtime
	}

	if release == nil {
		release = func() {}
	}

	p.sink.EntryStarted(name, uint64(len(data)))

	result, err := p.assembleFromBytes(entryID, name, data)
	if err != nil {
		release()
		p.sink.EntryFailed(name, err)
		return nil, err
	}

	result.mtime = mtime
	result.mode = mode
	result.atime = wopts.atime
	result.ctime = wopts.ctime
	result.release = release
	return result, nil
}

// assembleFromBytes does the actual chunking, dispatch, and downgrade
// logic shared by both Source kinds.
func (p *planner) assembleFromBytes(entryID uint64, name string, data []byte) (*assembledEntry, error) {
	usize := uint64(len(data))

	// Zero-length files always emit Store, regardless of the Chooser.
	if usize == 0 {
		return &assembledEntry{name: name, method: uint16(methodStore), crc32: 0, csize: 0, usize: 0, chunks: [][]byte{}}, nil
	}

	sniff := data
	if len(sniff) > sniffSize {
		sniff = sniff[:sniffSize]
	}
	decision := p.chooser.Decide(name, sniff)

	var result *assembledEntry
	var err error
	if decision.Method.fanOut() {
		result, err = p.planFanOut(entryID, name, data, decision)
	} else {
		result, err = p.planSingleWorker(entryID, name, data, decision)
	}
	if err != nil {
		return nil, err
	}

	final := downgrade(decision, result.csize, result.usize)
	if final.Method == methodStore && decision.Method != methodStore {
		// Re-emit as stored: no recompression, just the raw source bytes.
		// CRC-32 was already computed over the uncompressed bytes during
		// compression, so it is reused unchanged.
		result.method = uint16(methodStore)
		result.csize = result.usize
		result.chunks = splitChunks(data, crcChunkSize)
	} else {
		result.method = uint16(final.Method)
	}

	if p.digestAlgo != DigestNone {
		result.digest = computeDigest(p.digestAlgo, data)
	}
	return result, nil
}

// planFanOut handles Store and Deflate: partition into chunks, dispatch
// each to the pool, wait, then order and combine.
func (p *planner) planFanOut(entryID uint64, name string, data []byte, decision Decision) (*assembledEntry, error) {
	chunkSize := p.deflateChunkSize
	if decision.Method == methodStore {
		chunkSize = crcChunkSize
	}
	ranges := chunkRanges(len(data), chunkSize)

	results := make([]chunkResult, len(ranges))
	for i, r := range ranges {
		i, r := i, r
		isFinal := i == len(ranges)-1
		chunkData := data[r.start:r.end]
		p.sched.acquireBytes(int64(len(chunkData)))
		p.sched.dispatch(func() {
			res := compressChunk(chunkJob{entryID: entryID, chunkIndex: i, data: chunkData, decision: decision, isFinal: isFinal})
			results[i] = res
		})
	}
	p.sched.wait()

	chunks := make([][]byte, len(results))
	digests := make([]chunkDigest, len(results))
	var csize, usize uint64
	for i, r := range results {
		if r.err != nil {
			// None of this entry's chunks will ever reach the Writer; return
			// the whole reservation now instead of leaving it held until a
			// flush that will never happen.
			p.sched.releaseBytes(int64(len(data)))
			return nil, newErr(KindCompressorError, name, r.err)
		}
		chunks[i] = r.compressed
		digests[i] = chunkDigest{crc: r.crc, n: r.n}
		csize += uint64(len(r.compressed))
		usize += uint64(r.n)
	}

	return &assembledEntry{
		name:          name,
		crc32:         crcCombineAll(digests),
		csize:         csize,
		usize:         usize,
		chunks:        chunks,
		acquiredBytes: int64(usize),
		releaseBytes:  p.sched.releaseBytes,
	}, nil
}

// planSingleWorker handles Zstd and Xz: one job, one worker, no fan-out.
func (p *planner) planSingleWorker(entryID uint64, name string, data []byte, decision Decision) (*assembledEntry, error) {
	p.sched.acquireBytes(int64(len(data)))
	resultCh := make(chan chunkResult, 1)
	p.sched.dispatch(func() {
		resultCh <- compressChunk(chunkJob{entryID: entryID, chunkIndex: 0, data: data, decision: decision, isFinal: true})
	})
	p.sched.wait()
	r := <-resultCh
	if r.err != nil {
		p.sched.releaseBytes(int64(len(data)))
		return nil, newErr(KindCompressorError, name, r.err)
	}
	return &assembledEntry{
		name:          name,
		crc32:         r.crc,
		csize:         uint64(len(r.compressed)),
		usize:         uint64(len(data)),
		chunks:        [][]byte{r.compressed},
		acquiredBytes: int64(len(data)),
		releaseBytes:  p.sched.releaseBytes,
	}, nil
}

type byteRange struct{ start, end int }

// chunkRanges partitions an n-byte payload into chunks of size at most
// chunkSize, each also capped at maxChunkSize.
func chunkRanges(n, chunkSize int) []byteRange {
	if chunkSize <= 0 || chunkSize > maxChunkSize {
		chunkSize = maxChunkSize
	}
	var ranges []byteRange
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		ranges = append(ranges, byteRange{start, end})
	}
	if len(ranges) == 0 {
		ranges = append(ranges, byteRange{0, 0})
	}
	return ranges
}

// splitChunks is chunkRanges plus the slicing, used by the downgrade path
// where only the raw byte ranges are needed (no compression decision).
func splitChunks(data []byte, chunkSize int) [][]byte {
	ranges := chunkRanges(len(data), chunkSize)
	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		out[i] = data[r.start:r.end]
	}
	return out
}
