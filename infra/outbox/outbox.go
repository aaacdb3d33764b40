package outbox

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type State uint8

const (
	StatePending State = iota
	StatePublished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StatePublished:
		return "PUBLISHED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Entry --------------------

// Entry is one durable change record awaiting broadcast. Op mirrors the
// WAL record type of the mutation that produced it.
type Entry struct {
	Op          uint8
	Index       uint32
	State       State
	Retries     uint32
	LastAttempt int64
}

// binary encoding: [op:1][index:4][state:1][retries:4][lastAttempt:8]
func encodeEntry(e Entry) []byte {
	buf := make([]byte, 1+4+1+4+8)
	buf[0] = e.Op
	binary.BigEndian.PutUint32(buf[1:5], e.Index)
	buf[5] = byte(e.State)
	binary.BigEndian.PutUint32(buf[6:10], e.Retries)
	binary.BigEndian.PutUint64(buf[10:18], uint64(e.LastAttempt))
	return buf
}

func decodeEntry(b []byte) (Entry, error) {
	if len(b) != 18 {
		return Entry{}, errors.New("outbox: invalid entry length")
	}
	return Entry{
		Op:          b[0],
		Index:       binary.BigEndian.Uint32(b[1:5]),
		State:       State(b[5]),
		Retries:     binary.BigEndian.Uint32(b[6:10]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[10:18])),
	}, nil
}

// -------------------- Outbox --------------------

// Outbox is a pebble-backed durable changelog. Every applied mutation
// is recorded under its sequence number; the broadcaster drains pending
// entries and marks them published.
type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // we WANT durability
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// -------------------- API --------------------

// PutPending inserts a new pending entry (called by StoreService after
// a mutation is applied).
func (o *Outbox) PutPending(seq uint64, op uint8, index uint32) error {
	e := Entry{
		Op:    op,
		Index: index,
		State: StatePending,
	}
	return o.db.Set(keyFor(seq), encodeEntry(e), pebble.Sync)
}

// MarkPublished flips an entry to PUBLISHED after a successful send.
func (o *Outbox) MarkPublished(seq uint64) error {
	return o.updateState(seq, StatePublished, 0)
}

// MarkFailed records a failed publish attempt.
func (o *Outbox) MarkFailed(seq uint64, retries uint32) error {
	return o.updateState(seq, StateFailed, retries)
}

func (o *Outbox) updateState(seq uint64, state State, retries uint32) error {
	e, err := o.Get(seq)
	if err != nil {
		return err
	}
	e.State = state
	e.Retries = retries
	e.LastAttempt = time.Now().UnixNano()
	return o.db.Set(keyFor(seq), encodeEntry(e), pebble.Sync)
}

// Get returns the entry for a sequence number.
func (o *Outbox) Get(seq uint64) (Entry, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return Entry{}, err
	}
	defer closer.Close()

	return decodeEntry(val)
}

// -------------------- Scan --------------------

// ScanPending iterates entries still awaiting broadcast, in sequence
// order. Failed entries are revisited too so the broadcaster can retry
// them.
func (o *Outbox) ScanPending(fn func(seq uint64, e Entry) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: keyPrefixEnd(),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		e, err := decodeEntry(iter.Value())
		if err != nil {
			return err
		}
		if e.State == StatePublished {
			continue
		}
		if err := fn(seqFrom(iter.Key()), e); err != nil {
			return err
		}
	}
	return iter.Error()
}

// TruncatePublishedUpTo removes published entries at or below seq.
// Called by the snapshot job after a snapshot covers them.
func (o *Outbox) TruncatePublishedUpTo(seq uint64) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: append(keyFor(seq), 0xff),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		e, err := decodeEntry(iter.Value())
		if err != nil {
			return err
		}
		if e.State != StatePublished {
			continue
		}
		key := append([]byte(nil), iter.Key()...)
		if err := o.db.Delete(key, pebble.Sync); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Keys --------------------

const keyPrefix = "chg/"

func keyFor(seq uint64) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], seq)
	return key
}

// keyPrefixEnd is the smallest key greater than every prefixed key.
// The seq bytes are raw big-endian, so a printable sentinel like '~'
// would exclude high-byte sequences.
func keyPrefixEnd() []byte {
	end := []byte(keyPrefix)
	end[len(end)-1]++
	return end
}

func seqFrom(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(keyPrefix):])
}
