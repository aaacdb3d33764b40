package wal

import "time"

type RecordType byte

const (
	RecordSet  RecordType = 1
	RecordSwap RecordType = 2
	RecordCAS  RecordType = 3
	RecordTake RecordType = 4
)

// Record is one durable register mutation. Data holds the installed
// payload (empty for take records); Index is the register it applies to.
type Record struct {
	Type  RecordType
	Seq   uint64
	Time  int64
	Index uint32
	Data  []byte
}

func NewRecord(t RecordType, seq uint64, index uint32, data []byte) *Record {
	return &Record{
		Type:  t,
		Seq:   seq,
		Time:  time.Now().UnixNano(),
		Index: index,
		Data:  data,
	}
}
