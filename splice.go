package pzip

// spliceEntry wraps a PrecompressedEntry into an assembledEntry whose
// payload is a raw byte-range read from the source archive instead of
// freshly compressed chunks. It bypasses the planner and scheduler
// entirely — no chunking, no worker dispatch, no CRC recomputation.
func spliceEntry(p PrecompressedEntry) (*assembledEntry, error) {
	if err := validateName(p.Name); err != nil {
		return nil, err
	}

	handle, err := p.SourceHandle.OpenRange()
	if err != nil {
		return nil, newErr(KindSourceIO, p.Name, err)
	}

	mode := p.Mode
	if mode == 0 {
		mode = 0o644
	}

	return &assembledEntry{
		name:    p.Name,
		method:  p.Method,
		crc32:   p.CRC32,
		csize:   p.CSize,
		usize:   p.USize,
		mtime:   p.MTime,
		mode:    mode,
		splice:  handle,
		release: func() {},
	}, nil
}

// spliceFuture wraps spliceEntry in an already-resolved entryFuture so it
// can be enqueued into the same ordered queue the planner's futures use.
func spliceFuture(p PrecompressedEntry) *entryFuture {
	fut := newEntryFuture()
	a, err := spliceEntry(p)
	fut.resolve(a, err)
	return fut
}
