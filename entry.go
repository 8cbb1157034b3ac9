package pzip

import (
	"errors"
	"io/fs"
	"strings"
	"time"
)

// utf8BOM is the byte-order mark encoded in UTF-8, rejected in archive
// names.
const utf8BOM = "\xEF\xBB\xBF"

var (
	errEmptyName            = errors.New("archive name is empty")
	errLeadingTrailingSpace = errors.New("archive name has leading or trailing space")
	errNUL                  = errors.New("archive name contains NUL")
	errBackslash            = errors.New("archive name contains a backslash")
	errBOM                  = errors.New("archive name contains a byte-order mark")
	errDotDot               = errors.New("archive name contains a \"..\" path component")
)

// Source is satisfied by whatever supplies the bytes of a non-precompressed
// entry: a path on disk or an in-memory blob. Write accepts either.
type Source interface {
	source()
}

// FilePath is a Source backed by a file already on disk. The file is
// memory-mapped by the planner.
type FilePath struct {
	Path string
}

func (FilePath) source() {}

// Blob is a Source backed by bytes already resident in memory.
type Blob struct {
	Data []byte
}

func (Blob) source() {}

// WriteOption customizes a single Write call's metadata.
type WriteOption func(*writeOptions)

type writeOptions struct {
	mtime *time.Time
	atime *time.Time
	ctime *time.Time
	mode  fs.FileMode
}

// WithMTime sets a synthetic modification time for the entry, used for
// both the DOS date/time fields and the UNIX extended-timestamp extra.
func WithMTime(t time.Time) WriteOption {
	return func(o *writeOptions) { o.mtime = &t }
}

// WithExtraTimestamps carries atime/ctime through to the UNIX extended-
// timestamp extra. Optional: an entry without it still gets a valid
// extended-timestamp extra carrying only mtime.
func WithExtraTimestamps(atime, ctime time.Time) WriteOption {
	return func(o *writeOptions) { o.atime = &atime; o.ctime = &ctime }
}

// WithMode sets the declared file mode, encoded into external_attributes.
func WithMode(mode fs.FileMode) WriteOption {
	return func(o *writeOptions) { o.mode = mode }
}

// PrecompressedEntry describes a splice candidate: an entry whose
// compressed bytes already exist in a source archive and should be copied
// byte-for-byte into the new archive without recompression. The reader
// returned by SourceHandle.OpenRange must yield exactly CSize bytes of the
// stored/compressed stream, with no local-header bytes.
type PrecompressedEntry struct {
	Name         string
	Method       uint16
	SourceHandle RangeOpener
	CRC32        uint32
	CSize        uint64
	USize        uint64
	MTime        time.Time
	Mode         fs.FileMode
}

// RangeOpener opens a byte range of a source archive, used by the splice
// path.
type RangeOpener interface {
	OpenRange() (ReadCloserAt, error)
}

// ReadCloserAt is the minimal reader the splice path needs: sequential
// reads of exactly CSize bytes, then Close.
type ReadCloserAt interface {
	Read(p []byte) (int, error)
	Close() error
}

// validateName enforces this archive's name invariants: non-empty,
// forward slashes only, no leading/trailing space, no NUL, no BOM, no ".."
// path component. A literal backslash is rejected too, since it is exactly
// the kind of platform-ambiguous byte (a path separator on one OS, a plain
// character on another) that an archive name with only forward slashes
// should never contain.
func validateName(name string) error {
	if name == "" {
		return newErr(KindBadName, name, errEmptyName)
	}
	if strings.TrimSpace(name) != name {
		return newErr(KindBadName, name, errLeadingTrailingSpace)
	}
	if strings.ContainsRune(name, 0) {
		return newErr(KindBadName, name, errNUL)
	}
	if strings.Contains(name, "\\") {
		return newErr(KindBadName, name, errBackslash)
	}
	if strings.Contains(name, utf8BOM) {
		return newErr(KindBadName, name, errBOM)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return newErr(KindBadName, name, errDotDot)
		}
	}
	return nil
}
