package service

import (
	"fmt"
	"log"

	"rega"
	"rega/infra/sequence"
	"rega/snapshot"
	"rega/wal"
)

/*
Replay rebuilds in-memory register state from the latest snapshot plus
the WAL tail.

IMPORTANT:
- This MUST run before accepting traffic
- The outbox is NOT replayed into memory; the broadcaster drains it
*/
func Replay(
	snapDir string,
	walDir string,
	arr *rega.AtomicOptionRefArray[[]byte],
	seqGen *sequence.Sequencer,
) error {
	snapSeq, err := snapshot.Load(snapDir, arr)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	lastSeq := snapSeq
	err = wal.Replay(walDir, nil, snapSeq, func(rec *wal.Record) {
		if int(rec.Index) >= arr.Len() {
			return
		}
		switch rec.Type {
		case wal.RecordSet, wal.RecordSwap, wal.RecordCAS:
			arr.Store(int(rec.Index), rega.NewRef(append([]byte(nil), rec.Data...)))
		case wal.RecordTake:
			if old := arr.Take(int(rec.Index)); old != nil {
				old.Release()
			}
		}
		if rec.Seq > lastSeq {
			lastSeq = rec.Seq
		}
	})
	if err != nil {
		return err
	}

	// Resume sequencing AFTER replay
	seqGen.Reset(lastSeq)

	log.Printf("[replay] completed (snapshot seq = %d, last seq = %d)", snapSeq, lastSeq)
	return nil
}
