package pzip

import "testing"

func TestDefaultChooserStoresSmallFiles(t *testing.T) {
	c := DefaultChooser()
	d := c.Decide("notes.txt", []byte("tiny"))
	if d.Method != methodStore {
		t.Fatalf("want Store for a tiny file, got method %d", d.Method)
	}
}

func TestDefaultChooserDeflatesLargePlainText(t *testing.T) {
	c := DefaultChooser()
	sample := make([]byte, minStoreSize+1)
	for i := range sample {
		sample[i] = byte('a' + i%26)
	}
	d := c.Decide("big.txt", sample)
	if d.Method != methodFlate {
		t.Fatalf("want Deflate for a large plain-text file, got method %d", d.Method)
	}
}

func TestDefaultChooserStoresKnownCompressedExtensions(t *testing.T) {
	c := DefaultChooser()
	sample := make([]byte, minStoreSize+1)
	d := c.Decide("photo.PNG", sample)
	if d.Method != methodStore {
		t.Fatalf("want Store for .png regardless of size, got method %d", d.Method)
	}
}

func TestChooserFirstMatchWins(t *testing.T) {
	c := NewChooser([]ChooserRule{
		{Ext: ".log", Decision: ZstdDecision(3)},
		{MinSize: 1, Decision: DeflateDecision(6)},
	}, StoreDecision)

	d := c.Decide("service.log", []byte("x"))
	if d.Method != methodZstd {
		t.Fatalf("want the ext rule to win over the minSize rule, got method %d", d.Method)
	}
}

func TestDowngradeToStoreWhenCompressionDoesNotShrink(t *testing.T) {
	final := downgrade(DeflateDecision(6), 100, 100)
	if final.Method != methodStore {
		t.Fatalf("want downgrade to Store when compressed size >= uncompressed size, got method %d", final.Method)
	}
}

func TestDowngradeKeepsDecisionWhenCompressionHelps(t *testing.T) {
	final := downgrade(DeflateDecision(6), 50, 100)
	if final.Method != methodFlate {
		t.Fatalf("want the original decision kept when compression shrinks the entry, got method %d", final.Method)
	}
}

func TestDowngradeNeverTouchesAnAlreadyStoredDecision(t *testing.T) {
	final := downgrade(StoreDecision, 100, 100)
	if final.Method != methodStore {
		t.Fatalf("want Store unchanged, got method %d", final.Method)
	}
}

func TestMethodFanOut(t *testing.T) {
	cases := []struct {
		m    method
		want bool
	}{
		{methodStore, true},
		{methodFlate, true},
		{methodZstd, false},
		{methodXz, false},
	}
	for _, c := range cases {
		if got := c.m.fanOut(); got != c.want {
			t.Errorf("method %d: fanOut() = %v, want %v", c.m, got, c.want)
		}
	}
}
