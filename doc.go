// Package pzip assembles ZIP archives in parallel: entries are chunked,
// compressed across a worker pool bounded by open-file and in-flight-byte
// budgets, and written out in submission order by a single Writer that
// owns the central directory. It also supports splicing already-compressed
// bytes from a source archive straight into a new one, without
// recompression.
package pzip
