package rega

// AtomicOptionRefArray is a fixed-length sequence of independent
// AtomicOptionRef slots. Each slot is empty or occupied on its own;
// no operation touches more than one index and no cross-index ordering
// is implied.
type AtomicOptionRefArray[T any] struct {
	cells []AtomicOptionRef[T]
}

// NewAtomicOptionRefArray constructs an array of length empty slots.
func NewAtomicOptionRefArray[T any](length int) *AtomicOptionRefArray[T] {
	if length < 0 {
		panic("rega: negative array length")
	}
	return &AtomicOptionRefArray[T]{cells: make([]AtomicOptionRef[T], length)}
}

// NewAtomicOptionRefArrayWith constructs an array of length slots,
// using f to produce the initial ref for each index. f may return nil
// to leave a slot empty; non-nil refs are consumed into slot shares.
func NewAtomicOptionRefArrayWith[T any](length int, f func(i int) *Ref[T]) *AtomicOptionRefArray[T] {
	a := NewAtomicOptionRefArray[T](length)
	for i := range a.cells {
		a.cells[i].Store(f(i))
	}
	return a
}

// Len returns the number of slots.
func (a *AtomicOptionRefArray[T]) Len() int {
	return len(a.cells)
}

// IsEmpty reports whether the array has length zero.
func (a *AtomicOptionRefArray[T]) IsEmpty() bool {
	return len(a.cells) == 0
}

// Load returns a new ownership share of the value at index, or nil if
// the slot is empty.
//
// Panics if index is out of bounds.
func (a *AtomicOptionRefArray[T]) Load(index int) *Ref[T] {
	return a.cell(index).Load()
}

// Store installs r at index, consuming the caller's share. r may be nil
// to empty the slot.
//
// Panics if index is out of bounds.
func (a *AtomicOptionRefArray[T]) Store(index int, r *Ref[T]) {
	a.cell(index).Store(r)
}

// Swap installs r at index and returns the previous value as a live
// ownership share, or nil if the slot was empty.
//
// Panics if index is out of bounds.
func (a *AtomicOptionRefArray[T]) Swap(index int, r *Ref[T]) *Ref[T] {
	return a.cell(index).Swap(r)
}

// CompareAndSwap installs r at index only if the slot still holds
// exactly old (a handle from a prior Load, or nil for "expected
// empty"). It reports whether the swap happened; on failure the caller
// keeps ownership of r.
//
// Panics if index is out of bounds.
func (a *AtomicOptionRefArray[T]) CompareAndSwap(index int, old, r *Ref[T]) bool {
	return a.cell(index).CompareAndSwap(old, r)
}

// Take empties the slot at index and returns the previous value, or nil.
//
// Panics if index is out of bounds.
func (a *AtomicOptionRefArray[T]) Take(index int) *Ref[T] {
	return a.cell(index).Take()
}

// Range walks the array in index order, acquiring a share of each
// occupied slot and passing it to fn (nil for empty slots). The share
// is released after fn returns; retain it inside fn to keep the value.
// Returning false stops the walk. The traversal is restartable and each
// element read is individually atomic, but the walk as a whole is not a
// single atomic snapshot.
func (a *AtomicOptionRefArray[T]) Range(fn func(index int, r *Ref[T]) bool) {
	for i := range a.cells {
		r := a.cells[i].Load()
		ok := fn(i, r)
		if r != nil {
			r.Release()
		}
		if !ok {
			return
		}
	}
}

// Drain empties every slot, releasing the array's share of each held
// value. Outstanding handles remain valid. Use it for deterministic
// reclamation when discarding the array.
func (a *AtomicOptionRefArray[T]) Drain() {
	for i := range a.cells {
		if old := a.cells[i].Take(); old != nil {
			old.Release()
		}
	}
}

func (a *AtomicOptionRefArray[T]) cell(index int) *AtomicOptionRef[T] {
	if uint(index) >= uint(len(a.cells)) {
		panic("rega: index out of range")
	}
	return &a.cells[index]
}
