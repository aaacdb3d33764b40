package rega

import "sync/atomic"

// Primitive atomic arrays. These are fixed-length sequences of
// independent machine-word atomics with no reclamation concerns; they
// exist so callers get the same array-of-slots shape for plain values
// as for reference-counted ones.

// AtomicBoolArray is a bool array in which elements may be updated
// atomically.
type AtomicBoolArray struct {
	buf []atomic.Bool
}

// NewAtomicBoolArray constructs an array of length false values.
func NewAtomicBoolArray(length int) *AtomicBoolArray {
	return &AtomicBoolArray{buf: make([]atomic.Bool, length)}
}

// NewAtomicBoolArrayWith constructs an array of length elements, using
// f to produce the initial value for each index.
func NewAtomicBoolArrayWith(length int, f func(i int) bool) *AtomicBoolArray {
	a := NewAtomicBoolArray(length)
	for i := range a.buf {
		a.buf[i].Store(f(i))
	}
	return a
}

// Len returns the number of elements.
func (a *AtomicBoolArray) Len() int { return len(a.buf) }

// Load returns the value at index. Panics if index is out of bounds.
func (a *AtomicBoolArray) Load(index int) bool { return a.buf[index].Load() }

// Store sets the value at index. Panics if index is out of bounds.
func (a *AtomicBoolArray) Store(index int, v bool) { a.buf[index].Store(v) }

// Swap sets the value at index and returns the previous value.
// Panics if index is out of bounds.
func (a *AtomicBoolArray) Swap(index int, v bool) bool { return a.buf[index].Swap(v) }

// CompareAndSwap sets the value at index to new if it equals old.
// Panics if index is out of bounds.
func (a *AtomicBoolArray) CompareAndSwap(index int, old, new bool) bool {
	return a.buf[index].CompareAndSwap(old, new)
}

// Range walks the array in index order; returning false stops the walk.
func (a *AtomicBoolArray) Range(fn func(index int, v bool) bool) {
	for i := range a.buf {
		if !fn(i, a.buf[i].Load()) {
			return
		}
	}
}

// AtomicInt32Array is an int32 array in which elements may be updated
// atomically.
type AtomicInt32Array struct {
	buf []atomic.Int32
}

func NewAtomicInt32Array(length int) *AtomicInt32Array {
	return &AtomicInt32Array{buf: make([]atomic.Int32, length)}
}

func NewAtomicInt32ArrayWith(length int, f func(i int) int32) *AtomicInt32Array {
	a := NewAtomicInt32Array(length)
	for i := range a.buf {
		a.buf[i].Store(f(i))
	}
	return a
}

func (a *AtomicInt32Array) Len() int                  { return len(a.buf) }
func (a *AtomicInt32Array) Load(index int) int32      { return a.buf[index].Load() }
func (a *AtomicInt32Array) Store(index int, v int32)  { a.buf[index].Store(v) }
func (a *AtomicInt32Array) Swap(index int, v int32) int32 {
	return a.buf[index].Swap(v)
}

func (a *AtomicInt32Array) CompareAndSwap(index int, old, new int32) bool {
	return a.buf[index].CompareAndSwap(old, new)
}

// Add atomically adds delta to the value at index and returns the new value.
func (a *AtomicInt32Array) Add(index int, delta int32) int32 {
	return a.buf[index].Add(delta)
}

func (a *AtomicInt32Array) Range(fn func(index int, v int32) bool) {
	for i := range a.buf {
		if !fn(i, a.buf[i].Load()) {
			return
		}
	}
}

// AtomicInt64Array is an int64 array in which elements may be updated
// atomically.
type AtomicInt64Array struct {
	buf []atomic.Int64
}

func NewAtomicInt64Array(length int) *AtomicInt64Array {
	return &AtomicInt64Array{buf: make([]atomic.Int64, length)}
}

func NewAtomicInt64ArrayWith(length int, f func(i int) int64) *AtomicInt64Array {
	a := NewAtomicInt64Array(length)
	for i := range a.buf {
		a.buf[i].Store(f(i))
	}
	return a
}

func (a *AtomicInt64Array) Len() int                 { return len(a.buf) }
func (a *AtomicInt64Array) Load(index int) int64     { return a.buf[index].Load() }
func (a *AtomicInt64Array) Store(index int, v int64) { a.buf[index].Store(v) }
func (a *AtomicInt64Array) Swap(index int, v int64) int64 {
	return a.buf[index].Swap(v)
}

func (a *AtomicInt64Array) CompareAndSwap(index int, old, new int64) bool {
	return a.buf[index].CompareAndSwap(old, new)
}

func (a *AtomicInt64Array) Add(index int, delta int64) int64 {
	return a.buf[index].Add(delta)
}

func (a *AtomicInt64Array) Range(fn func(index int, v int64) bool) {
	for i := range a.buf {
		if !fn(i, a.buf[i].Load()) {
			return
		}
	}
}

// AtomicUint32Array is a uint32 array in which elements may be updated
// atomically.
type AtomicUint32Array struct {
	buf []atomic.Uint32
}

func NewAtomicUint32Array(length int) *AtomicUint32Array {
	return &AtomicUint32Array{buf: make([]atomic.Uint32, length)}
}

func NewAtomicUint32ArrayWith(length int, f func(i int) uint32) *AtomicUint32Array {
	a := NewAtomicUint32Array(length)
	for i := range a.buf {
		a.buf[i].Store(f(i))
	}
	return a
}

func (a *AtomicUint32Array) Len() int                  { return len(a.buf) }
func (a *AtomicUint32Array) Load(index int) uint32     { return a.buf[index].Load() }
func (a *AtomicUint32Array) Store(index int, v uint32) { a.buf[index].Store(v) }
func (a *AtomicUint32Array) Swap(index int, v uint32) uint32 {
	return a.buf[index].Swap(v)
}

func (a *AtomicUint32Array) CompareAndSwap(index int, old, new uint32) bool {
	return a.buf[index].CompareAndSwap(old, new)
}

func (a *AtomicUint32Array) Add(index int, delta uint32) uint32 {
	return a.buf[index].Add(delta)
}

func (a *AtomicUint32Array) Range(fn func(index int, v uint32) bool) {
	for i := range a.buf {
		if !fn(i, a.buf[i].Load()) {
			return
		}
	}
}

// AtomicUint64Array is a uint64 array in which elements may be updated
// atomically.
type AtomicUint64Array struct {
	buf []atomic.Uint64
}

func NewAtomicUint64Array(length int) *AtomicUint64Array {
	return &AtomicUint64Array{buf: make([]atomic.Uint64, length)}
}

func NewAtomicUint64ArrayWith(length int, f func(i int) uint64) *AtomicUint64Array {
	a := NewAtomicUint64Array(length)
	for i := range a.buf {
		a.buf[i].Store(f(i))
	}
	return a
}

func (a *AtomicUint64Array) Len() int                  { return len(a.buf) }
func (a *AtomicUint64Array) Load(index int) uint64     { return a.buf[index].Load() }
func (a *AtomicUint64Array) Store(index int, v uint64) { a.buf[index].Store(v) }
func (a *AtomicUint64Array) Swap(index int, v uint64) uint64 {
	return a.buf[index].Swap(v)
}

func (a *AtomicUint64Array) CompareAndSwap(index int, old, new uint64) bool {
	return a.buf[index].CompareAndSwap(old, new)
}

func (a *AtomicUint64Array) Add(index int, delta uint64) uint64 {
	return a.buf[index].Add(delta)
}

func (a *AtomicUint64Array) Range(fn func(index int, v uint64) bool) {
	for i := range a.buf {
		if !fn(i, a.buf[i].Load()) {
			return
		}
	}
}
