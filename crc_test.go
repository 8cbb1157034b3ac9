package pzip

import (
	"hash/crc32"
	"testing"
)

func TestCRC32CombineMatchesWholeBufferChecksum(t *testing.T) {
	data := make([]byte, 5*crcChunkSize+137)
	for i := range data {
		data[i] = byte(i * 7)
	}

	want := crc32.ChecksumIEEE(data)

	var chunks []chunkDigest
	for _, r := range chunkRanges(len(data), crcChunkSize) {
		part := data[r.start:r.end]
		chunks = append(chunks, chunkDigest{crc: crc32.ChecksumIEEE(part), n: int64(len(part))})
	}

	got := crcCombineAll(chunks)
	if got != want {
		t.Fatalf("crcCombineAll = %08x, want %08x", got, want)
	}
}

func TestCRC32CombineEmptyInput(t *testing.T) {
	if got := crcCombineAll(nil); got != 0 {
		t.Fatalf("crcCombineAll(nil) = %08x, want 0", got)
	}
}

func TestCRC32CombineSingleChunk(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	want := crc32.ChecksumIEEE(data)
	got := crcCombineAll([]chunkDigest{{crc: want, n: int64(len(data))}})
	if got != want {
		t.Fatalf("crcCombineAll single chunk = %08x, want %08x", got, want)
	}
}

func TestCRC32CombineZeroLengthSecondOperand(t *testing.T) {
	a := crc32.ChecksumIEEE([]byte("hello"))
	if got := crc32Combine(a, crc32.ChecksumIEEE(nil), 0); got != a {
		t.Fatalf("combining with a zero-length operand should be a no-op, got %08x want %08x", got, a)
	}
}
