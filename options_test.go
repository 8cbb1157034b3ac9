package pzip

import "testing"

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()

	if o.OpenFileBudget != 16 {
		t.Errorf("OpenFileBudget default = %d, want 16", o.OpenFileBudget)
	}
	if o.ByteBudget != 64<<20 {
		t.Errorf("ByteBudget default = %d, want %d", o.ByteBudget, 64<<20)
	}
	if o.DeflateChunkSize != 256<<10 {
		t.Errorf("DeflateChunkSize default = %d, want %d", o.DeflateChunkSize, 256<<10)
	}
	if o.Chooser == nil {
		t.Error("Chooser default is nil")
	}
	if o.Sink == nil {
		t.Error("Sink default is nil")
	}
	if o.Threads <= 0 {
		t.Errorf("Threads default = %d, want > 0", o.Threads)
	}
}

func TestOptionsWithDefaultsPreservesExplicitValues(t *testing.T) {
	o := Options{
		Threads:          3,
		OpenFileBudget:   5,
		ByteBudget:       1 << 20,
		DeflateChunkSize: 1 << 16,
	}.withDefaults()

	if o.Threads != 3 {
		t.Errorf("Threads = %d, want 3", o.Threads)
	}
	if o.OpenFileBudget != 5 {
		t.Errorf("OpenFileBudget = %d, want 5", o.OpenFileBudget)
	}
	if o.ByteBudget != 1<<20 {
		t.Errorf("ByteBudget = %d, want %d", o.ByteBudget, 1<<20)
	}
	if o.DeflateChunkSize != 1<<16 {
		t.Errorf("DeflateChunkSize = %d, want %d", o.DeflateChunkSize, 1<<16)
	}
}
