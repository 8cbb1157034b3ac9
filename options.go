package pzip

import "runtime"

// Options configures an Archive, grounded on the shape of the teacher's
// config.go/defaults.go Config struct and ResetDefaults: a flat struct of
// tunables, all zero-valued fields replaced by a sane default.
type Options struct {
	// Threads is the worker pool size; zero defaults to runtime.NumCPU().
	Threads int
	// OpenFileBudget bounds concurrently memory-mapped FilePath inputs;
	// zero defaults to 16.
	OpenFileBudget int
	// ByteBudget bounds the total uncompressed bytes of chunk jobs that
	// have been dispatched but not yet flushed by the Writer; zero
	// defaults to 64 MiB.
	ByteBudget int64
	// Chooser selects compression per entry; nil defaults to
	// DefaultChooser().
	Chooser *Chooser
	// DeflateChunkSize is the chunk size used when fanning out a Deflate
	// entry; zero defaults to 256 KiB.
	DeflateChunkSize int
	// DigestAlgorithm enables an optional strong per-entry digest extra
	// field; zero value DigestNone disables it.
	DigestAlgorithm DigestAlgorithm
	// Sink receives span events; nil defaults to NopSink{}.
	Sink EventSink
	// PreflightDiskSpace, when true, checks free space against ByteBudget
	// before opening the output file.
	PreflightDiskSpace bool

	// debugFlags carries internal test-only toggles (see bitflag.go),
	// ported from the teacher's BitFlags-driven feature switches. Unexported:
	// set only by this package's own tests, e.g. to force every entry
	// through the ZIP64 path without allocating gigabytes of input.
	debugFlags bitFlags
}

const (
	defaultByteBudget       = 64 << 20
	defaultDeflateChunkSize = 256 << 10
	defaultOpenFileBudget   = 16
)

// withDefaults returns a copy of o with every zero-valued field replaced,
// mirroring the teacher's ResetDefaults.
func (o Options) withDefaults() Options {
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
	if o.OpenFileBudget <= 0 {
		o.OpenFileBudget = defaultOpenFileBudget
	}
	if o.ByteBudget <= 0 {
		o.ByteBudget = defaultByteBudget
	}
	if o.Chooser == nil {
		o.Chooser = DefaultChooser()
	}
	if o.DeflateChunkSize <= 0 {
		o.DeflateChunkSize = defaultDeflateChunkSize
	}
	if o.Sink == nil {
		o.Sink = NopSink{}
	}
	return o
}
