package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"rega"
)

type Writer struct {
	Dir string
}

// Write walks the array and persists every occupied register. Values
// are copied out under the handle's ownership share, so concurrent
// mutation cannot corrupt the image.
func (w *Writer) Write(seq uint64, arr *rega.AtomicOptionRefArray[[]byte]) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Length:  arr.Len(),
		Entries: make([]Entry, 0, arr.Len()),
	}
	arr.Range(func(i int, r *rega.Ref[[]byte]) bool {
		if r == nil {
			return true
		}
		v := r.Value()
		s.Entries = append(s.Entries, Entry{
			Index: uint32(i),
			Value: append([]byte(nil), v...),
		})
		return true
	})

	tmp := filepath.Join(w.Dir, "snapshot.bin.tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, "snapshot.bin"))
}
