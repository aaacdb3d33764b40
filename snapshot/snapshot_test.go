package snapshot

import (
	"bytes"
	"testing"

	"rega"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()

	arr := rega.NewAtomicOptionRefArray[[]byte](8)
	defer arr.Drain()
	arr.Store(1, rega.NewRef([]byte("one")))
	arr.Store(5, rega.NewRef([]byte("five")))

	w := &Writer{Dir: dir}
	if err := w.Write(42, arr); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	restored := rega.NewAtomicOptionRefArray[[]byte](8)
	defer restored.Drain()
	seq, err := Load(dir, restored)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if seq != 42 {
		t.Fatalf("expected seq 42, got %d", seq)
	}

	h := restored.Load(5)
	if h == nil || !bytes.Equal(h.Value(), []byte("five")) {
		t.Fatalf("register 5 not restored")
	}
	h.Release()
	if restored.Load(0) != nil {
		t.Fatal("empty registers must stay empty")
	}
}

func TestSnapshotLoadMissing(t *testing.T) {
	arr := rega.NewAtomicOptionRefArray[[]byte](2)
	seq, err := Load(t.TempDir(), arr)
	if err != nil || seq != 0 {
		t.Fatalf("missing snapshot should be seq 0, nil error; got %d, %v", seq, err)
	}
}
