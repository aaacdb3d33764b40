package snapshot

import "time"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Length  int
	Entries []Entry
}

// Entry is one occupied register. Empty slots are omitted.
type Entry struct {
	Index uint32
	Value []byte
}
