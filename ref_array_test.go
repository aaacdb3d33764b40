package rega

import (
	"sync"
	"testing"
)

func TestRefArrayNeverEmpty(t *testing.T) {
	a := NewAtomicRefArray(3, func() int { return 0 })
	defer a.Drain()

	for i := 0; i < a.Len(); i++ {
		h := a.Load(i)
		if h == nil {
			t.Fatalf("slot %d empty after construction", i)
		}
		if h.Value() != 0 {
			t.Fatalf("expected default 0 at %d, got %d", i, h.Value())
		}
		h.Release()
	}
}

// take(1) on a default-backed array re-installs a fresh default; get(1)
// must return 0, never an empty indicator.
func TestRefArrayTakeReinstallsDefault(t *testing.T) {
	a := NewAtomicRefArray(3, func() int { return 0 })
	defer a.Drain()

	a.Store(1, NewRef(99))
	prev := a.Take(1)
	if prev.Value() != 99 {
		t.Fatalf("take should return the removed value, got %d", prev.Value())
	}
	prev.Release()

	h := a.Load(1)
	if h == nil {
		t.Fatal("slot empty immediately after take")
	}
	if h.Value() != 0 {
		t.Fatalf("expected fresh default 0, got %d", h.Value())
	}
	h.Release()
}

func TestRefArrayRejectsNilRef(t *testing.T) {
	a := NewAtomicRefArray(2, func() string { return "" })
	defer a.Drain()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic storing nil ref")
		}
	}()
	a.Store(0, nil)
}

func TestRefArrayCompareAndSwap(t *testing.T) {
	a := NewAtomicRefArray(1, func() int { return 0 })
	defer a.Drain()

	cur := a.Load(0)
	if !a.CompareAndSwap(0, cur, NewRef(5)) {
		t.Fatal("CAS with current identity should succeed")
	}
	next := NewRef(6)
	if a.CompareAndSwap(0, cur, next) {
		t.Fatal("CAS with stale identity should fail")
	}
	next.Release()
	cur.Release()
}

func TestRefArrayOutOfRange(t *testing.T) {
	a := NewAtomicRefArray(3, func() int { return 0 })
	defer a.Drain()

	defer func() {
		if recover() == nil {
			t.Fatal("expected out-of-range panic")
		}
	}()
	a.Load(3)
}

// The non-empty invariant must hold at every instant, including while
// concurrent takers are racing loaders on the same index.
func TestRefArrayInvariantUnderConcurrentTake(t *testing.T) {
	a := NewAtomicRefArray(4, func() uint64 { return 7 })
	defer a.Drain()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			idx := w % a.Len()
			for i := 0; i < 2000; i++ {
				switch i % 3 {
				case 0:
					a.Store(idx, NewRef(uint64(i)))
				case 1:
					a.Take(idx).Release()
				default:
					h := a.Load(idx)
					if h == nil {
						t.Errorf("slot %d observed empty", idx)
						return
					}
					h.Release()
				}
			}
		}(w)
	}
	wg.Wait()
}
