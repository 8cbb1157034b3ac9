package pzip

import (
	"io"
	"os"
	"sync/atomic"
	"time"
)

// writerState names the Writer's states: Open -> WritingEntry -> Open ->
// ... -> Closing -> Closed.
type writerState int

const (
	stateOpen writerState = iota
	stateWritingEntry
	stateClosing
	stateClosed
)

// cdRecord is everything needed to emit one central directory header,
// accumulated as the Writer consumes entries.
type cdRecord struct {
	name              string
	method            uint16
	mtime             time.Time
	atime, ctime      *time.Time
	crc32             uint32
	csize, usize      uint64
	localHeaderOffset uint64
	externalAttrs     uint32
	digestAlgo        DigestAlgorithm
	digest            []byte
}

// countingWriter wraps the output file and tracks the current offset,
// ported directly from the teacher's countWriter.go countingWriter.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	m, err := cw.w.Write(p)
	cw.n += int64(m)
	return m, err
}

func (cw *countingWriter) Count() int64 { return cw.n }

// writer is the single-threaded consumer: it pulls assembled-entry
// futures in submission order, writes local headers + payloads, and on
// Close emits the central directory.
type writer struct {
	state      writerState
	file       *os.File
	path       string
	cw         *countingWriter
	seenNames  map[string]bool
	records    []cdRecord
	digestAlgo DigestAlgorithm
	sink       EventSink
	fatalErr   error
	forceZip64 bool
	aborted    atomic.Bool // set by Archive.Abort, read by the drain goroutine
}

func newWriter(f *os.File, path string, digestAlgo DigestAlgorithm, sink EventSink, forceZip64 bool) *writer {
	return &writer{
		state:      stateOpen,
		file:       f,
		path:       path,
		cw:         &countingWriter{w: f},
		seenNames:  make(map[string]bool),
		digestAlgo: digestAlgo,
		sink:       sink,
		forceZip64: forceZip64,
	}
}

// consume pulls one entry's future to completion: on success, it writes
// the local header and payload and records a CD entry (unless the name is
// a duplicate); on failure, it records the archive-fatal error. It always
// calls the entry's release callback so mmaps and file-budget units are
// freed exactly once the payload has been flushed.
func (w *writer) consume(fut *entryFuture) {
	if w.fatalErr != nil || w.aborted.Load() {
		// Archive already fatally broken; still drain the future so its
		// resources are released, but do nothing else.
		if a, _ := fut.wait(); a != nil {
			a.discard()
		}
		return
	}

	a, err := fut.wait()
	if err != nil {
		w.sink.EntryFailed(entryNameOf(err), err)
		if pe, ok := err.(*Error); !ok || pe.Kind.fatal() {
			w.fatalErr = err
		}
		return
	}
	defer a.release()

	w.state = stateWritingEntry
	if w.seenNames[a.name] {
		// Duplicate: diagnostic, skip, do not advance the central directory.
		// These chunks will never reach the output, so their reservation is
		// returned here instead of at a flush that will never happen.
		w.sink.EntryFailed(a.name, newErr(KindDuplicateName, a.name, errDuplicateName))
		if a.splice != nil {
			a.splice.Close()
		}
		if a.releaseBytes != nil {
			a.releaseBytes(a.acquiredBytes)
		}
		w.state = stateOpen
		return
	}

	if err := w.writeEntry(a); err != nil {
		w.fatalErr = err
		w.sink.EntryFailed(a.name, err)
		return
	}

	w.seenNames[a.name] = true
	w.state = stateOpen
}

func (w *writer) writeEntry(a *assembledEntry) error {
	localHeaderOffset := uint64(w.cw.Count())

	extras := w.buildExtras(a, localHeaderOffset)
	header := localFileHeader(a.name, a.method, a.crc32, a.csize, a.usize, a.mtime, extras, w.forceZip64)
	if _, err := w.cw.Write(header); err != nil {
		return newErr(KindOutputIO, a.name, err)
	}

	if a.splice != nil {
		if err := w.copySplice(a); err != nil {
			return err
		}
	} else {
		var writeErr error
		for _, chunk := range a.chunks {
			if _, err := w.cw.Write(chunk); err != nil {
				writeErr = newErr(KindOutputIO, a.name, err)
				break
			}
		}
		// The byte budget is held until the chunks are actually flushed to
		// the output file, whether or not the flush succeeded: once the
		// write is attempted the in-memory payload is no longer needed.
		if a.releaseBytes != nil {
			a.releaseBytes(a.acquiredBytes)
		}
		if writeErr != nil {
			return writeErr
		}
	}
	w.sink.BytesWritten(uint64(w.cw.Count()))
	w.sink.EntryFinished(a.name, a.csize, a.method)

	w.records = append(w.records, cdRecord{
		name:              a.name,
		method:            a.method,
		mtime:             a.mtime,
		atime:             a.atime,
		ctime:             a.ctime,
		crc32:             a.crc32,
		csize:             a.csize,
		usize:             a.usize,
		localHeaderOffset: localHeaderOffset,
		externalAttrs:     externalAttrs(uint32(a.mode)),
		digestAlgo:        w.digestAlgo,
		digest:            a.digest,
	})
	return nil
}

// copySplice performs the bounded-buffer byte copy for a precompressed
// entry: not a zero-copy syscall, for portability. CRC-32 is never
// recomputed; the caller guarantees it.
func (w *writer) copySplice(a *assembledEntry) error {
	defer a.splice.Close()
	buf := make([]byte, 256*1024)
	remaining := int64(a.csize)
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := a.splice.Read(buf[:n])
		if read > 0 {
			if _, werr := w.cw.Write(buf[:read]); werr != nil {
				return newErr(KindOutputIO, a.name, werr)
			}
			remaining -= int64(read)
		}
		if err != nil {
			if err == io.EOF && remaining == 0 {
				break
			}
			return newErr(KindSourceIO, a.name, err)
		}
	}
	return nil
}

// buildExtras assembles the extra-field bytes for one entry: UNIX
// timestamp, ZIP64 (if any field needs it), and the optional digest, in
// that order.
func (w *writer) buildExtras(a *assembledEntry, localHeaderOffset uint64) []byte {
	var extras []byte
	extras = append(extras, unixTimestampExtra(a.mtime, a.atime, a.ctime)...)

	z := zip64Fields{usize: a.usize, csize: a.csize, localHeaderOffset: localHeaderOffset}
	if z.needsZip64(w.forceZip64) {
		extras = append(extras, zip64Extra(z, w.forceZip64)...)
	}

	if w.digestAlgo != DigestNone {
		extras = append(extras, digestExtra(w.digestAlgo, a.digest)...)
	}
	return extras
}

// close drains any remaining state, writes the central directory, ZIP64
// records when needed, and the EOCD. It returns the first archive-fatal
// error observed, if any; on any such error the output file is removed
// and the target path does not exist.
func (w *writer) close() error {
	w.state = stateClosing
	if w.fatalErr != nil {
		w.abort()
		return w.fatalErr
	}

	cdStart := uint64(w.cw.Count())
	for _, r := range w.records {
		extras := w.centralExtrasFor(r)
		header := centralDirHeader(r.name, r.method, r.crc32, r.csize, r.usize, r.localHeaderOffset, r.mtime, r.externalAttrs, extras, w.forceZip64)
		if _, err := w.cw.Write(header); err != nil {
			w.abort()
			return newErr(KindOutputIO, r.name, err)
		}
	}
	cdSize := uint64(w.cw.Count()) - cdStart

	count := len(w.records)
	needsZip64 := w.forceZip64 || count > zip64Sentinel16 || cdStart >= zip64Sentinel32 || cdSize >= zip64Sentinel32
	if needsZip64 {
		zip64Offset := uint64(w.cw.Count())
		if _, err := w.cw.Write(zip64EOCDRecord(count, cdSize, cdStart)); err != nil {
			w.abort()
			return newErr(KindOutputIO, "", err)
		}
		if _, err := w.cw.Write(zip64EOCDLocator(zip64Offset)); err != nil {
			w.abort()
			return newErr(KindOutputIO, "", err)
		}
	}

	if _, err := w.cw.Write(eocd(count, cdSize, cdStart)); err != nil {
		w.abort()
		return newErr(KindOutputIO, "", err)
	}

	if err := w.file.Close(); err != nil {
		return newErr(KindOutputIO, "", err)
	}
	w.state = stateClosed
	return nil
}

func (w *writer) centralExtrasFor(r cdRecord) []byte {
	var extras []byte
	extras = append(extras, unixTimestampExtra(r.mtime, r.atime, r.ctime)...)
	z := zip64Fields{usize: r.usize, csize: r.csize, localHeaderOffset: r.localHeaderOffset}
	if z.needsZip64(w.forceZip64) {
		extras = append(extras, zip64Extra(z, w.forceZip64)...)
	}
	if r.digestAlgo != DigestNone {
		extras = append(extras, digestExtra(r.digestAlgo, r.digest)...)
	}
	return extras
}

// abort discards the queue without writing remaining entries, and removes
// the partially written output file.
func (w *writer) abort() {
	w.file.Close()
	os.Remove(w.path)
	w.state = stateClosed
}

func entryNameOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Name
	}
	return ""
}
