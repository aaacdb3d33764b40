package sequence

import "testing"

func TestWatermarkQuiescent(t *testing.T) {
	w := NewWatermark(42)
	if w.Safe() != 42 {
		t.Fatalf("fresh watermark should report its start, got %d", w.Safe())
	}
	w.Begin(43)
	w.End(43)
	if w.Safe() != 43 {
		t.Fatalf("expected 43 after completion, got %d", w.Safe())
	}
}

// The horizon must stall below the lowest in-flight sequence even when
// later sequences have already completed.
func TestWatermarkHoldsBelowInflight(t *testing.T) {
	w := NewWatermark(4)
	w.Begin(5)
	w.Begin(6)
	w.Begin(7)

	w.End(6)
	if w.Safe() != 4 {
		t.Fatalf("5 still in flight, horizon must stay at 4, got %d", w.Safe())
	}
	w.End(5)
	if w.Safe() != 6 {
		t.Fatalf("expected 6 with only 7 in flight, got %d", w.Safe())
	}
	w.End(7)
	if w.Safe() != 7 {
		t.Fatalf("expected 7 when drained, got %d", w.Safe())
	}
}
