package sequence

import "sync"

// Watermark tracks which issued sequence IDs have finished journaling.
// Snapshots are stamped with Safe() so WAL and outbox truncation never
// claims coverage of a mutation that is still between sequencing and
// its journal write.
type Watermark struct {
	mu       sync.Mutex
	inflight map[uint64]struct{}
	issued   uint64
}

// NewWatermark starts the tracker at the last replayed sequence.
func NewWatermark(start uint64) *Watermark {
	return &Watermark{
		inflight: make(map[uint64]struct{}),
		issued:   start,
	}
}

// Begin registers seq as in flight.
func (w *Watermark) Begin(seq uint64) {
	w.mu.Lock()
	w.inflight[seq] = struct{}{}
	if seq > w.issued {
		w.issued = seq
	}
	w.mu.Unlock()
}

// End marks seq complete.
func (w *Watermark) End(seq uint64) {
	w.mu.Lock()
	delete(w.inflight, seq)
	w.mu.Unlock()
}

// Safe returns the pruning horizon: the highest sequence with no
// in-flight sequence at or below it. With nothing in flight it equals
// the last issued sequence.
func (w *Watermark) Safe() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	safe := w.issued
	for seq := range w.inflight {
		if seq-1 < safe {
			safe = seq - 1
		}
	}
	return safe
}
