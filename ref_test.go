package rega

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestRefLifecycle(t *testing.T) {
	dropped := 0
	r := NewRefDrop(42, func(int) { dropped++ })

	if r.Value() != 42 {
		t.Fatalf("expected value 42, got %d", r.Value())
	}
	r.Retain()
	r.Release()
	if dropped != 0 {
		t.Fatal("drop ran while a share was still held")
	}
	r.Release()
	if dropped != 1 {
		t.Fatalf("expected exactly one drop, got %d", dropped)
	}
}

func TestRefTryRetainAfterTeardown(t *testing.T) {
	r := NewRef("x")
	r.Release()
	if r.tryRetain() {
		t.Fatal("tryRetain succeeded on a released ref")
	}
}

func TestRefRetainPanicsAfterRelease(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on retain of released ref")
		}
	}()
	r := NewRef(1)
	r.Release()
	r.Retain()
}

func TestRefConcurrentRetainRelease(t *testing.T) {
	var drops atomic.Int64
	r := NewRefDrop(0, func(int) { drops.Add(1) })

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Retain()
				r.Release()
			}
		}()
	}
	wg.Wait()

	if drops.Load() != 0 {
		t.Fatal("value dropped while the base share was held")
	}
	r.Release()
	if drops.Load() != 1 {
		t.Fatalf("expected exactly one drop, got %d", drops.Load())
	}
}
