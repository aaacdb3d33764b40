package rega

// AtomicRefArray is an AtomicOptionRefArray in which the empty state is
// never observable. Construction fills every slot with a freshly
// produced default, and Take re-installs one instead of leaving the
// slot empty, so Load always returns a live value.
type AtomicRefArray[T any] struct {
	buf *AtomicOptionRefArray[T]
	def func() T
}

// NewAtomicRefArray constructs an array of length slots, eagerly
// installing def() into every one. def must not be nil.
func NewAtomicRefArray[T any](length int, def func() T) *AtomicRefArray[T] {
	if def == nil {
		panic("rega: nil default producer")
	}
	return &AtomicRefArray[T]{
		buf: NewAtomicOptionRefArrayWith(length, func(int) *Ref[T] {
			return NewRef(def())
		}),
		def: def,
	}
}

// Len returns the number of slots.
func (a *AtomicRefArray[T]) Len() int {
	return a.buf.Len()
}

// Load returns a new ownership share of the value at index. The result
// is never nil.
//
// Panics if index is out of bounds.
func (a *AtomicRefArray[T]) Load(index int) *Ref[T] {
	return a.buf.Load(index)
}

// Store installs r at index, consuming the caller's share.
//
// Panics if index is out of bounds or r is nil: an AtomicRefArray slot
// can never be emptied.
func (a *AtomicRefArray[T]) Store(index int, r *Ref[T]) {
	a.buf.Store(index, a.nonNil(r))
}

// Swap installs r at index and returns the previous value as a live
// ownership share.
//
// Panics if index is out of bounds or r is nil.
func (a *AtomicRefArray[T]) Swap(index int, r *Ref[T]) *Ref[T] {
	return a.buf.Swap(index, a.nonNil(r))
}

// CompareAndSwap installs r at index only if the slot still holds
// exactly old. It reports whether the swap happened; on failure the
// caller keeps ownership of r.
//
// Panics if index is out of bounds or r is nil.
func (a *AtomicRefArray[T]) CompareAndSwap(index int, old, r *Ref[T]) bool {
	return a.buf.CompareAndSwap(index, old, a.nonNil(r))
}

// Take replaces the value at index with a freshly produced default and
// returns the previous value. The slot is never observed empty.
//
// Panics if index is out of bounds.
func (a *AtomicRefArray[T]) Take(index int) *Ref[T] {
	return a.buf.Swap(index, NewRef(a.def()))
}

// Range walks the array in index order; see AtomicOptionRefArray.Range.
// fn always receives a non-nil ref.
func (a *AtomicRefArray[T]) Range(fn func(index int, r *Ref[T]) bool) {
	a.buf.Range(fn)
}

// Drain empties the underlying slots, releasing the array's shares.
// After Drain the non-empty invariant no longer holds; use it only when
// discarding the array.
func (a *AtomicRefArray[T]) Drain() {
	a.buf.Drain()
}

func (a *AtomicRefArray[T]) nonNil(r *Ref[T]) *Ref[T] {
	if r == nil {
		panic("rega: nil ref stored in AtomicRefArray")
	}
	return r
}
