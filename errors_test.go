package pzip

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	e := newErr(KindSourceIO, "f.txt", cause)
	if !errors.Is(e, cause) {
		t.Fatal("want errors.Is to see through Unwrap to the cause")
	}
}

func TestKindFatalClassification(t *testing.T) {
	cases := []struct {
		k     Kind
		fatal bool
	}{
		{KindBadName, false},
		{KindDuplicateName, false},
		{KindSourceIO, true},
		{KindCompressorError, true},
		{KindOutputIO, true},
		{KindInconsistent, true},
	}
	for _, c := range cases {
		if got := c.k.fatal(); got != c.fatal {
			t.Errorf("%v.fatal() = %v, want %v", c.k, got, c.fatal)
		}
	}
}

func TestErrorMessageIncludesName(t *testing.T) {
	e := newErr(KindBadName, "bad/../name", errDotDot)
	if e.Error() == "" {
		t.Fatal("want a non-empty error message")
	}
}
