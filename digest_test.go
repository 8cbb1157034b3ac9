package pzip

import "testing"

func TestComputeDigestLengths(t *testing.T) {
	data := []byte("some payload bytes to hash")
	cases := []struct {
		algo DigestAlgorithm
		want int
	}{
		{DigestCRC16, 2},
		{DigestXXH3, 8},
		{DigestSHA256, 32},
		{DigestBLAKE3, 32},
		{DigestBLAKE2b512, 64},
	}
	for _, c := range cases {
		got := computeDigest(c.algo, data)
		if len(got) != c.want {
			t.Errorf("algo %d: digest length = %d, want %d", c.algo, len(got), c.want)
		}
		if len(got) != digestLen(c.algo) {
			t.Errorf("algo %d: computeDigest length disagrees with digestLen", c.algo)
		}
	}
}

func TestComputeDigestNoneReturnsNil(t *testing.T) {
	if got := computeDigest(DigestNone, []byte("x")); got != nil {
		t.Fatalf("DigestNone should return nil, got %d bytes", len(got))
	}
}

func TestComputeDigestDeterministic(t *testing.T) {
	data := []byte("deterministic input")
	a := computeDigest(DigestSHA256, data)
	b := computeDigest(DigestSHA256, data)
	if string(a) != string(b) {
		t.Fatal("want the same digest for the same input")
	}
}
