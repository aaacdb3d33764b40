package service

import (
	"context"
	"log"
	"time"

	"rega/snapshot"
)

// StartSnapshotJob periodically persists the register array and prunes
// the WAL and outbox entries the snapshot now covers. announce, if not
// nil, is called with the snapshot sequence after a successful write
// (e.g. to publish a notification).
func (s *StoreService) StartSnapshotJob(
	ctx context.Context,
	dir string,
	interval time.Duration,
	announce func(seq uint64),
) {
	w := &snapshot.Writer{Dir: dir}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.snapshotOnce(w, announce); err != nil {
					log.Printf("[snapshot] write failed: %v", err)
				}
			}
		}
	}()
}

// snapshotOnce persists one image and prunes everything it covers. The
// image is stamped with the watermark horizon, not the last issued
// sequence: a writer that is sequenced but not yet journaled must not
// have its only durable record truncated away.
func (s *StoreService) snapshotOnce(w *snapshot.Writer, announce func(seq uint64)) error {
	seq := s.marks.Safe()
	if err := w.Write(seq, s.arr); err != nil {
		return err
	}
	if s.wal != nil {
		_ = s.wal.TruncateBefore(seq)
	}
	if s.box != nil {
		_ = s.box.TruncatePublishedUpTo(seq)
	}
	if announce != nil {
		announce(seq)
	}
	return nil
}

// StartReclaimJob drains retired payload buffers back into the pool.
func (s *StoreService) StartReclaimJob(ctx context.Context, interval time.Duration) {
	if s.pool == nil || s.ring == nil {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				for {
					buf := s.ring.Dequeue()
					if buf == nil {
						break
					}
					s.pool.Put(buf)
				}
			}
		}
	}()
}
