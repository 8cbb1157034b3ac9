package pzip

import (
	"bytes"
	"errors"
	"testing"
)

func TestNopSinkIsANoOp(t *testing.T) {
	var s NopSink
	s.EntryStarted("a", 10)
	s.EntryFinished("a", 5, uint16(methodStore))
	s.BytesWritten(100)
	s.EntryFailed("a", errors.New("boom"))
}

func TestConsoleProgressSinkWritesProgress(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleProgressSink(&buf)
	s.EntryStarted("file.txt", 1000)
	s.BytesWritten(500)
	if buf.Len() == 0 {
		t.Fatal("want BytesWritten to produce some console output")
	}
	if !bytes.Contains(buf.Bytes(), []byte("file.txt")) {
		t.Fatalf("want the current entry name in the progress line, got %q", buf.String())
	}
}

func TestConsoleProgressSinkReportsFailures(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleProgressSink(&buf)
	s.EntryFailed("bad.txt", errors.New("kaboom"))
	if !bytes.Contains(buf.Bytes(), []byte("kaboom")) {
		t.Fatalf("want the failure reported, got %q", buf.String())
	}
}
