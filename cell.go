package rega

import "sync/atomic"

// AtomicOptionRef is a single slot holding zero or one reference-counted
// value. The slot itself owns one share of whatever it currently holds;
// every successful Load hands the caller an additional share.
//
// The zero value is an empty slot ready for use.
type AtomicOptionRef[T any] struct {
	p atomic.Pointer[Ref[T]]
}

// Load returns a new ownership share of the current value, or nil if
// the slot is empty. The returned handle stays valid regardless of
// concurrent Store/Swap/CompareAndSwap on the slot; release it with
// Ref.Release when done.
//
// Lock-free: if the observed value is mid-teardown the read retries,
// and a failed retry implies some writer made progress.
func (c *AtomicOptionRef[T]) Load() *Ref[T] {
	for {
		r := c.p.Load()
		if r == nil {
			return nil
		}
		if r.tryRetain() {
			return r
		}
		// Raced with the last release of a detached value; the
		// pointer is stale, re-read.
	}
}

// Store unconditionally installs r, which may be nil to empty the slot.
// The slot takes over the caller's share of r; the caller must not use
// r afterwards unless it retained another share first. The slot's share
// of the displaced value is released.
func (c *AtomicOptionRef[T]) Store(r *Ref[T]) {
	old := c.p.Swap(r)
	if old != nil {
		old.Release()
	}
}

// Swap installs r (nil allowed) and returns the previous value as a
// live ownership share, or nil if the slot was empty. The slot's share
// of the old value transfers directly to the caller, so no retry window
// is exposed and the result is safe to use even if the slot is mutated
// again immediately.
func (c *AtomicOptionRef[T]) Swap(r *Ref[T]) *Ref[T] {
	return c.p.Swap(r)
}

// CompareAndSwap installs r only if the slot still holds exactly old,
// where old is a handle previously returned by Load (or nil to expect
// an empty slot). It reports whether the swap happened.
//
// On success the slot's share of old is released and the caller's share
// of r moves to the slot. On failure nothing is mutated and the caller
// keeps ownership of r, so it can be reused for a retry or released.
func (c *AtomicOptionRef[T]) CompareAndSwap(old, r *Ref[T]) bool {
	if !c.p.CompareAndSwap(old, r) {
		return false
	}
	if old != nil {
		old.Release()
	}
	return true
}

// Take empties the slot and returns the previous value as a live
// ownership share, or nil if it was already empty.
func (c *AtomicOptionRef[T]) Take() *Ref[T] {
	return c.Swap(nil)
}
