package rega

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestOptionRefArrayStartsEmpty(t *testing.T) {
	a := NewAtomicOptionRefArray[int](8)
	if a.Len() != 8 || a.IsEmpty() {
		t.Fatalf("unexpected shape: len=%d", a.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.Load(i) != nil {
			t.Fatalf("slot %d not empty after construction", i)
		}
	}
}

func TestOptionRefArrayWith(t *testing.T) {
	a := NewAtomicOptionRefArrayWith(4, func(i int) *Ref[int] {
		if i%2 == 0 {
			return NewRef(i * 10)
		}
		return nil
	})
	defer a.Drain()

	h := a.Load(2)
	if h == nil || h.Value() != 20 {
		t.Fatalf("expected 20 at index 2, got %v", h)
	}
	h.Release()
	if a.Load(1) != nil {
		t.Fatal("odd slots should be empty")
	}
}

func TestOptionRefArrayOutOfRange(t *testing.T) {
	a := NewAtomicOptionRefArray[int](3)

	h := a.Load(2) // in range
	if h != nil {
		h.Release()
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected out-of-range panic")
		}
	}()
	a.Load(3)
}

func TestOptionRefArrayNegativeIndex(t *testing.T) {
	a := NewAtomicOptionRefArray[int](3)
	defer func() {
		if recover() == nil {
			t.Fatal("expected out-of-range panic")
		}
	}()
	a.Store(-1, NewRef(1))
}

func TestOptionRefArrayTake(t *testing.T) {
	a := NewAtomicOptionRefArray[string](2)
	a.Store(0, NewRef("v"))

	prev := a.Take(0)
	if prev == nil || prev.Value() != "v" {
		t.Fatalf("take should return previous value, got %v", prev)
	}
	prev.Release()
	if a.Load(0) != nil {
		t.Fatal("slot should be empty after take")
	}
}

func TestOptionRefArrayRange(t *testing.T) {
	a := NewAtomicOptionRefArrayWith(5, func(i int) *Ref[int] {
		return NewRef(i)
	})
	defer a.Drain()

	var seen []int
	a.Range(func(i int, r *Ref[int]) bool {
		seen = append(seen, r.Value())
		return i < 2 // stop after index 2
	})
	if len(seen) != 3 || seen[0] != 0 || seen[2] != 2 {
		t.Fatalf("unexpected walk: %v", seen)
	}

	// Restartable.
	n := 0
	a.Range(func(int, *Ref[int]) bool { n++; return true })
	if n != 5 {
		t.Fatalf("expected full restartable walk, visited %d", n)
	}
}

func TestOptionRefArrayDrainReleasesSlots(t *testing.T) {
	var drops atomic.Int64
	a := NewAtomicOptionRefArrayWith(4, func(i int) *Ref[int] {
		return NewRefDrop(i, func(int) { drops.Add(1) })
	})

	h := a.Load(3)
	a.Drain()

	if drops.Load() != 3 {
		t.Fatalf("expected 3 drops after drain with one live handle, got %d", drops.Load())
	}
	if h.Value() != 3 {
		t.Fatal("outstanding handle invalidated by drain")
	}
	h.Release()
	if drops.Load() != 4 {
		t.Fatalf("expected 4 drops, got %d", drops.Load())
	}
}

// Independent indices must not interfere under concurrent mutation.
func TestOptionRefArrayConcurrentPerIndex(t *testing.T) {
	const length = 16
	a := NewAtomicOptionRefArray[int](length)
	defer a.Drain()

	var wg sync.WaitGroup
	for i := 0; i < length; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if prev := a.Swap(i, NewRef(i)); prev != nil {
					if prev.Value() != i {
						t.Errorf("index %d observed foreign value %d", i, prev.Value())
					}
					prev.Release()
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < length; i++ {
		h := a.Load(i)
		if h == nil || h.Value() != i {
			t.Fatalf("index %d ended with wrong value", i)
		}
		h.Release()
	}
}
