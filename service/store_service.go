package service

import (
	"bytes"
	"errors"

	"rega"
	"rega/infra/memory"
	"rega/infra/outbox"
	"rega/infra/sequence"
	"rega/wal"
)

// ErrIndexOutOfRange is returned for register indices outside [0, Len).
// No partial mutation occurs.
var ErrIndexOutOfRange = errors.New("service: register index out of range")

// StoreService exposes a fixed-length store of opaque byte registers.
// Reads and writes are lock-free per register; every successful
// mutation is sequenced, journaled to the WAL, and recorded in the
// outbox for broadcast.
//
// Payload buffers come from the buffer pool and return to it through
// the ref drop hook and the retire ring, so a hot register allocates
// nothing in steady state.
type StoreService struct {
	arr   *rega.AtomicOptionRefArray[[]byte]
	seq   *sequence.Sequencer
	marks *sequence.Watermark
	wal   *wal.WAL
	box   *outbox.Outbox
	pool  *memory.BufferPool
	ring  *memory.RetireRing
}

// NewStoreService wires all dependencies. wal and box may be nil for
// ephemeral stores; pool and ring may be nil to fall back to plain
// GC-managed buffers.
func NewStoreService(
	arr *rega.AtomicOptionRefArray[[]byte],
	seqGen *sequence.Sequencer,
	w *wal.WAL,
	box *outbox.Outbox,
	pool *memory.BufferPool,
	ring *memory.RetireRing,
) *StoreService {
	return &StoreService{
		arr:   arr,
		seq:   seqGen,
		marks: sequence.NewWatermark(seqGen.Current()),
		wal:   w,
		box:   box,
		pool:  pool,
		ring:  ring,
	}
}

// Len returns the number of registers.
func (s *StoreService) Len() int {
	return s.arr.Len()
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Get returns a copy of the register's current value. found is false
// for an empty register. The copy is required: the backing buffer may
// return to the pool once the read share is released.
func (s *StoreService) Get(index int) (value []byte, found bool, err error) {
	if err := s.check(index); err != nil {
		return nil, false, err
	}
	h := s.arr.Load(index)
	if h == nil {
		return nil, false, nil
	}
	value = append([]byte(nil), h.Value()...)
	h.Release()
	return value, true, nil
}

// Entries returns a point-in-time copy of every occupied register.
// Each register read is individually atomic; the walk as a whole is not.
func (s *StoreService) Entries() ([]Entry, error) {
	out := make([]Entry, 0, s.arr.Len())
	s.arr.Range(func(i int, r *rega.Ref[[]byte]) bool {
		if r != nil {
			out = append(out, Entry{
				Index: uint32(i),
				Value: append([]byte(nil), r.Value()...),
			})
		}
		return true
	})
	return out, nil
}

// Entry is one occupied register as seen by Entries.
type Entry struct {
	Index uint32
	Value []byte
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Set unconditionally installs value and returns the operation sequence.
func (s *StoreService) Set(index int, value []byte) (uint64, error) {
	if err := s.check(index); err != nil {
		return 0, err
	}
	s.arr.Store(index, s.newPayload(value))
	return s.commit(wal.RecordSet, index, value), nil
}

// Swap installs value and returns a copy of the previous value.
func (s *StoreService) Swap(index int, value []byte) (prev []byte, found bool, seq uint64, err error) {
	if err := s.check(index); err != nil {
		return nil, false, 0, err
	}
	old := s.arr.Swap(index, s.newPayload(value))
	seq = s.commit(wal.RecordSwap, index, value)
	if old != nil {
		prev = append([]byte(nil), old.Value()...)
		old.Release()
		found = true
	}
	return prev, found, seq, nil
}

// CompareAndSwap installs value only if the register currently holds
// exactly expected (nil expected means "must be empty"). A false result
// under contention is a normal outcome, not an error.
//
// Value equality is checked on an acquired handle, then the actual
// installation uses the identity CAS of the underlying cell, so a
// concurrent writer between the two steps makes the CAS fail rather
// than clobber.
func (s *StoreService) CompareAndSwap(index int, expected, value []byte) (swapped bool, seq uint64, err error) {
	if err := s.check(index); err != nil {
		return false, 0, err
	}

	cur := s.arr.Load(index)
	if cur == nil {
		if expected != nil {
			return false, 0, nil
		}
		// Expected empty: install only if still empty.
		next := s.newPayload(value)
		if !s.arr.CompareAndSwap(index, nil, next) {
			next.Release()
			return false, 0, nil
		}
		return true, s.commit(wal.RecordCAS, index, value), nil
	}

	match := expected != nil && bytes.Equal(cur.Value(), expected)
	if !match {
		cur.Release()
		return false, 0, nil
	}

	next := s.newPayload(value)
	ok := s.arr.CompareAndSwap(index, cur, next)
	cur.Release()
	if !ok {
		// The rejected payload is still ours; recycle it.
		next.Release()
		return false, 0, nil
	}
	return true, s.commit(wal.RecordCAS, index, value), nil
}

// Take empties the register and returns a copy of the removed value.
func (s *StoreService) Take(index int) (prev []byte, found bool, seq uint64, err error) {
	if err := s.check(index); err != nil {
		return nil, false, 0, err
	}
	old := s.arr.Take(index)
	seq = s.commit(wal.RecordTake, index, nil)
	if old != nil {
		prev = append([]byte(nil), old.Value()...)
		old.Release()
		found = true
	}
	return prev, found, seq, nil
}

// Close drains the array, releasing the store's shares so pooled
// buffers are reclaimed deterministically.
func (s *StoreService) Close() {
	s.arr.Drain()
}

//
// ──────────────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────────────
//

func (s *StoreService) check(index int) error {
	if index < 0 || index >= s.arr.Len() {
		return ErrIndexOutOfRange
	}
	return nil
}

// newPayload copies value into a pooled buffer wrapped in a ref whose
// drop hook retires the buffer for reuse.
func (s *StoreService) newPayload(value []byte) *rega.Ref[[]byte] {
	if s.pool == nil {
		return rega.NewRef(append([]byte(nil), value...))
	}
	buf := s.pool.Get(len(value))
	copy(buf, value)
	return rega.NewRefDrop(buf, s.retire)
}

func (s *StoreService) retire(buf []byte) {
	if s.ring == nil || !s.ring.Enqueue(buf) {
		return // ring full or absent: abandon the buffer to the GC
	}
}

// commit sequences and journals a mutation whose apply already took
// effect. Every command uses this ordering: conditional mutations only
// produce a record once they are known to have succeeded, so the
// journal holds outcomes, never intents. The watermark keeps the
// snapshot job from pruning records that are still mid-commit.
func (s *StoreService) commit(t wal.RecordType, index int, data []byte) uint64 {
	seq := s.seq.Next()
	s.marks.Begin(seq)
	s.journal(t, seq, index, data)
	s.marks.End(seq)
	return seq
}

// journal is best-effort; the in-memory state stays authoritative.
func (s *StoreService) journal(t wal.RecordType, seq uint64, index int, data []byte) {
	if s.wal != nil {
		_ = s.wal.Append(wal.NewRecord(t, seq, uint32(index), data))
	}
	if s.box != nil {
		_ = s.box.PutPending(seq, uint8(t), uint32(index))
	}
}
