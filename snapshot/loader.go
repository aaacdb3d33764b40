package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"rega"
)

// Load restores the latest snapshot in dir into arr and returns its
// sequence. A missing snapshot is not an error; it returns seq 0.
func Load(dir string, arr *rega.AtomicOptionRefArray[[]byte]) (uint64, error) {
	f, err := os.Open(filepath.Join(dir, "snapshot.bin"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, err
	}

	for _, e := range s.Entries {
		if int(e.Index) >= arr.Len() {
			continue // snapshot from a longer array; ignore the tail
		}
		arr.Store(int(e.Index), rega.NewRef(e.Value))
	}
	return s.Seq, nil
}
