package pzip

import (
	"bytes"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// chunkJob is one unit of work handed to the worker pool: a contiguous
// byte range of one entry's payload, to be compressed with one method.
// isFinal marks the last chunk of a Deflate entry (Z_FINISH instead of
// Z_SYNC_FLUSH); it is meaningless for Store/Zstd/Xz.
type chunkJob struct {
	entryID    uint64
	chunkIndex int
	data       []byte
	decision   Decision
	isFinal    bool
}

// chunkResult is what a worker hands back: the compressed bytes (equal to
// data itself for Store), the CRC-32 of the uncompressed chunk, and its
// uncompressed length.
type chunkResult struct {
	entryID    uint64
	chunkIndex int
	compressed []byte
	crc        uint32
	n          int64
	err        error
}

// compressChunk is the stateless worker function: (bytes, decision,
// isFinal) -> (compressed, crc32, uncompressed_len). Grounded on the
// teacher's compressor()/decompressor() dispatch switches in
// create.go/extract.go, narrowed to the four ZIP-legal methods this
// engine produces.
func compressChunk(job chunkJob) chunkResult {
	crc := crc32.ChecksumIEEE(job.data)
	res := chunkResult{entryID: job.entryID, chunkIndex: job.chunkIndex, crc: crc, n: int64(len(job.data))}

	switch job.decision.Method {
	case methodStore:
		res.compressed = job.data
		return res

	case methodFlate:
		compressed, err := deflateChunk(job.data, job.decision.Level, job.isFinal)
		if err != nil {
			res.err = fmt.Errorf("deflate chunk %d: %w", job.chunkIndex, err)
			return res
		}
		res.compressed = compressed
		return res

	case methodZstd:
		compressed, err := zstdEntry(job.data, job.decision.Level)
		if err != nil {
			res.err = fmt.Errorf("zstd entry: %w", err)
			return res
		}
		res.compressed = compressed
		return res

	case methodXz:
		compressed, err := xzEntry(job.data, job.decision.Level)
		if err != nil {
			res.err = fmt.Errorf("xz entry: %w", err)
			return res
		}
		res.compressed = compressed
		return res

	default:
		res.err = fmt.Errorf("unknown method %d", job.decision.Method)
		return res
	}
}

// deflateChunk emits a raw deflate stream fragment (no zlib/gzip
// wrapper): Z_SYNC_FLUSH after every chunk but the last, Z_FINISH on the
// last. Concatenating fragments across an entry's chunks, in chunk-index
// order, yields one valid raw deflate stream. Backed by
// klauspost/compress/flate, already a teacher dependency.
func deflateChunk(data []byte, level int, isFinal bool) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if isFinal {
		if err := zw.Close(); err != nil {
			return nil, err
		}
	} else {
		// Flush emits a sync-flush: an empty stored block that
		// byte-aligns the stream without terminating it, the point at
		// which another chunk's fragment can be appended.
		if err := zw.Flush(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// zstdEntry emits one complete zstd frame for an entire entry. Independently
// compressed zstd frames don't concatenate into one valid frame the way
// sync-flushed deflate fragments do, so the planner never calls this
// per-chunk — one call covers the whole entry and runs on a single worker.
func zstdEntry(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xzEntry emits one complete xz stream for an entire entry, the same
// single-worker, no-fan-out treatment as zstd.
func xzEntry(data []byte, preset int) ([]byte, error) {
	var buf bytes.Buffer
	cfg := xz.WriterConfig{DictCap: 1 << 22}
	if preset >= 6 {
		cfg.DictCap = 1 << 24
	}
	zw, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
