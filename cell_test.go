package rega

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestCellLoadEmpty(t *testing.T) {
	var c AtomicOptionRef[int]
	if c.Load() != nil {
		t.Fatal("empty cell should load nil")
	}
}

func TestCellStoreAndLoad(t *testing.T) {
	var c AtomicOptionRef[string]
	c.Store(NewRef("hello"))

	h := c.Load()
	if h == nil || h.Value() != "hello" {
		t.Fatalf("expected hello, got %v", h)
	}
	h.Release()
}

func TestCellSwapReturnsPrevious(t *testing.T) {
	var c AtomicOptionRef[int]
	if prev := c.Swap(NewRef(1)); prev != nil {
		t.Fatal("swap on empty cell should return nil")
	}
	prev := c.Swap(NewRef(2))
	if prev == nil || prev.Value() != 1 {
		t.Fatalf("expected previous value 1, got %v", prev)
	}
	prev.Release()
}

func TestCellCompareAndSwap(t *testing.T) {
	var c AtomicOptionRef[int]

	// Expected-empty CAS.
	if !c.CompareAndSwap(nil, NewRef(10)) {
		t.Fatal("CAS against empty slot should succeed")
	}
	if c.CompareAndSwap(nil, NewRef(11)) {
		t.Fatal("CAS expecting empty should fail on occupied slot")
	}

	cur := c.Load()
	if !c.CompareAndSwap(cur, NewRef(20)) {
		t.Fatal("CAS with current identity should succeed")
	}
	// cur is now stale: a second CAS against it must fail.
	failed := NewRef(30)
	if c.CompareAndSwap(cur, failed) {
		t.Fatal("CAS with stale identity should fail")
	}
	// The rejected value still belongs to the caller.
	failed.Release()
	cur.Release()

	h := c.Load()
	if h.Value() != 20 {
		t.Fatalf("expected 20, got %d", h.Value())
	}
	h.Release()
}

func TestCellHandleSurvivesReplacement(t *testing.T) {
	var c AtomicOptionRef[[]byte]
	c.Store(NewRef([]byte("first")))

	h := c.Load()
	for i := 0; i < 100; i++ {
		c.Store(NewRef([]byte("next")))
	}
	if string(h.Value()) != "first" {
		t.Fatalf("handle contents corrupted: %q", h.Value())
	}
	h.Release()
	c.Store(nil)
}

// Two goroutines swap concurrently; afterwards the cell holds one of
// the two values and the loser received the winner's prior value.
func TestCellConcurrentSwapExchange(t *testing.T) {
	var c AtomicOptionRef[string]
	c.Store(NewRef("base"))

	var wg sync.WaitGroup
	prevs := make([]string, 2)
	vals := []string{"X", "Y"}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prev := c.Swap(NewRef(vals[i]))
			prevs[i] = prev.Value()
			prev.Release()
		}(i)
	}
	wg.Wait()

	h := c.Load()
	final := h.Value()
	h.Release()
	if final != "X" && final != "Y" {
		t.Fatalf("final value corrupted: %q", final)
	}
	if prevs[0] != "base" && prevs[1] != "base" {
		t.Fatalf("no swapper observed the base value: %v", prevs)
	}
}

// Stress the load/teardown race window: writers continually replace the
// value while readers load, verify, and release. A probe counts
// constructions and drops; at the end every construction must have
// dropped exactly once and no reader may have observed freed contents.
func TestCellStressNoUseAfterFreeNoLeak(t *testing.T) {
	var (
		c     AtomicOptionRef[uint64]
		made  atomic.Int64
		drops atomic.Int64
		stop  atomic.Bool
	)
	newProbe := func(v uint64) *Ref[uint64] {
		made.Add(1)
		return NewRefDrop(v, func(uint64) { drops.Add(1) })
	}

	c.Store(newProbe(1))

	const writers, readers = 4, 4
	var writerWG, readerWG sync.WaitGroup

	for w := 0; w < writers; w++ {
		writerWG.Add(1)
		go func(w int) {
			defer writerWG.Done()
			for i := uint64(0); i < 5000; i++ {
				c.Store(newProbe(uint64(w+1)<<32 | i))
			}
		}(w)
	}
	for r := 0; r < readers; r++ {
		readerWG.Add(1)
		go func() {
			defer readerWG.Done()
			for !stop.Load() {
				h := c.Load()
				if h == nil {
					t.Error("cell observed empty during stress")
					return
				}
				if h.Value() == 0 {
					t.Error("reader observed zeroed payload")
				}
				h.Release()
			}
		}()
	}

	writerWG.Wait()
	stop.Store(true)
	readerWG.Wait()

	if last := c.Take(); last != nil {
		last.Release()
	}
	if made.Load() != drops.Load() {
		t.Fatalf("leak detected: %d constructed, %d dropped", made.Load(), drops.Load())
	}
}

// Loads against a single cell must only ever observe values installed
// by some store, never torn contents.
func TestCellLinearizablePerSlot(t *testing.T) {
	var (
		c    AtomicOptionRef[[2]uint64]
		stop atomic.Bool
	)
	c.Store(NewRef([2]uint64{1, 1}))

	var writerWG, readerWG sync.WaitGroup
	for w := 0; w < 2; w++ {
		writerWG.Add(1)
		go func(w int) {
			defer writerWG.Done()
			for i := uint64(1); i <= 10000; i++ {
				v := uint64(w+1)<<40 | i
				c.Store(NewRef([2]uint64{v, v}))
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		readerWG.Add(1)
		go func() {
			defer readerWG.Done()
			for !stop.Load() {
				h := c.Load()
				v := h.Value()
				if v[0] != v[1] {
					t.Errorf("torn value observed: %x != %x", v[0], v[1])
				}
				h.Release()
			}
		}()
	}

	writerWG.Wait()
	stop.Store(true)
	readerWG.Wait()

	if last := c.Take(); last != nil {
		last.Release()
	}
}

func BenchmarkCellLoad(b *testing.B) {
	var c AtomicOptionRef[int]
	c.Store(NewRef(7))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			h := c.Load()
			h.Release()
		}
	})
}

func BenchmarkCellSwap(b *testing.B) {
	var c AtomicOptionRef[int]
	c.Store(NewRef(0))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			prev := c.Swap(NewRef(1))
			if prev != nil {
				prev.Release()
			}
		}
	})
}
