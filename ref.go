package rega

import "sync/atomic"

// Ref is a reference-counted box around one value of T. Every handle
// returned from a cell or array operation is one ownership share; the
// value is reclaimed exactly once, when the last share is released.
type Ref[T any] struct {
	refs atomic.Int64
	drop func(T)
	v    T
}

// NewRef boxes v with a single ownership share owned by the caller.
func NewRef[T any](v T) *Ref[T] {
	r := &Ref[T]{v: v}
	r.refs.Store(1)
	return r
}

// NewRefDrop is NewRef with a reclamation hook. drop runs exactly once,
// on whichever goroutine releases the last share. Typical uses are
// returning a payload buffer to a pool or counting teardowns in tests.
func NewRefDrop[T any](v T, drop func(T)) *Ref[T] {
	r := &Ref[T]{v: v, drop: drop}
	r.refs.Store(1)
	return r
}

// Value returns the boxed value. Valid only while the caller holds a share.
func (r *Ref[T]) Value() T {
	return r.v
}

// Retain adds an ownership share. The caller must already hold one;
// retaining a fully released ref is a bug and panics.
func (r *Ref[T]) Retain() *Ref[T] {
	if n := r.refs.Add(1); n < 2 {
		panic("rega: retain of released Ref")
	}
	return r
}

// Release drops one ownership share. At the 1 -> 0 transition the drop
// hook (if any) runs; after that the ref must not be used again.
func (r *Ref[T]) Release() {
	n := r.refs.Add(-1)
	if n == 0 {
		if r.drop != nil {
			r.drop(r.v)
		}
		return
	}
	if n < 0 {
		panic("rega: Ref released more times than retained")
	}
}

// tryRetain adds a share only if at least one share still exists.
// It fails when the count is already zero, meaning the value raced
// with teardown and the observing pointer is stale.
//
// A CAS loop, not a blind Add: a fetch-add would transiently resurrect
// a dead ref (0 -> 1) and a second concurrent loader could mistake that
// for a live one.
func (r *Ref[T]) tryRetain() bool {
	for {
		n := r.refs.Load()
		if n == 0 {
			return false
		}
		if r.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// shares reports the current count. Test hook.
func (r *Ref[T]) shares() int64 {
	return r.refs.Load()
}
