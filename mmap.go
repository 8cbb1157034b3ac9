package pzip

import "os"

// mappedFile is a read-only memory mapping of an input file, acquired by
// the planner while it sniffs and chunks a FilePath entry's payload. The
// underlying bytes stay valid until unmap is called.
type mappedFile struct {
	data  []byte
	unmap func() error
}

// mapFile memory-maps the full contents of f, whose size is already known
// from a prior Stat call. Platform specifics live in mmap_unix.go and
// mmap_windows.go.
func mapFile(f *os.File, size int64) (*mappedFile, error) {
	if size == 0 {
		return &mappedFile{data: nil, unmap: func() error { return nil }}, nil
	}
	return mmapPlatform(f, size)
}
