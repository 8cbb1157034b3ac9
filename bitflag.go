package pzip

// bitFlags is a small generic bit set, used for the internal feature
// toggles carried by Options.
type bitFlags uint64

// set sets the specified bit(s).
func (f *bitFlags) set(flag bitFlags) {
	*f |= flag
}

// clear unsets the specified bit(s).
func (f *bitFlags) clear(flag bitFlags) {
	*f &^= flag
}

// isSet reports whether all of the specified bit(s) are set.
func (f bitFlags) isSet(flag bitFlags) bool {
	return f&flag == flag
}

const (
	flagNone bitFlags = 1 << iota
	// flagWriteZip64Always forces ZIP64 records on every entry and on the
	// end-of-central-directory, bypassing the per-field promotion
	// thresholds. Used by this package's own tests to exercise the ZIP64
	// encode path without allocating gigabytes of input.
	flagWriteZip64Always
)
