package outbox

import "testing"

func TestOutboxLifecycle(t *testing.T) {
	o, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open outbox: %v", err)
	}
	defer o.Close()

	if err := o.PutPending(1, 2, 7); err != nil {
		t.Fatalf("put: %v", err)
	}
	e, err := o.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.State != StatePending || e.Op != 2 || e.Index != 7 {
		t.Fatalf("unexpected entry: %+v", e)
	}

	if err := o.MarkPublished(1); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	e, _ = o.Get(1)
	if e.State != StatePublished {
		t.Fatalf("expected PUBLISHED, got %v", e.State)
	}
}

func TestOutboxScanPendingSkipsPublished(t *testing.T) {
	o, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	_ = o.PutPending(1, 1, 0)
	_ = o.PutPending(2, 1, 1)
	_ = o.PutPending(3, 1, 2)
	_ = o.MarkPublished(2)

	var seqs []uint64
	err = o.ScanPending(func(seq uint64, e Entry) error {
		seqs = append(seqs, seq)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 3 {
		t.Fatalf("unexpected pending set: %v", seqs)
	}
}

func TestOutboxTruncatePublished(t *testing.T) {
	o, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	_ = o.PutPending(1, 1, 0)
	_ = o.PutPending(2, 1, 0)
	_ = o.MarkPublished(1)
	_ = o.MarkPublished(2)
	_ = o.PutPending(3, 1, 0)

	if err := o.TruncatePublishedUpTo(2); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := o.Get(1); err == nil {
		t.Fatal("entry 1 should be gone")
	}
	if _, err := o.Get(3); err != nil {
		t.Fatal("pending entry 3 must survive truncation")
	}
}
