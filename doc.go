// Package rega provides fixed-length array types whose elements can be
// read and replaced atomically by many goroutines without locks,
// including elements that are dynamically-sized, shared-ownership
// values rather than machine words.
//
// The core primitive is AtomicOptionRef, a single slot holding zero or
// one reference-counted value (a *Ref). Loads acquire an ownership
// share before the value can be reclaimed, so a handle returned from
// Load or Swap stays valid no matter how often the slot is mutated
// afterwards. On top of it sit AtomicOptionRefArray (slots may be
// empty), AtomicRefArray (a default value is re-installed whenever a
// slot would become empty), and the mechanical primitive arrays
// (AtomicBoolArray, AtomicInt64Array, ...).
//
// All operations are lock-free: contention causes retries, never
// blocking, and some goroutine always makes progress.
package rega
