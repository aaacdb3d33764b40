package wal

import (
	"encoding/binary"
	"errors"
)

type Serializer interface {
	Encode(*Record) ([]byte, error)
	Decode([]byte) (*Record, error)
}

var ErrCorruptRecord = errors.New("wal: corrupted record")

// BinarySerializer is the default fixed-layout codec:
// [type:1][seq:8][time:8][index:4][len:4][data]
type BinarySerializer struct{}

const recordHeaderSize = 1 + 8 + 8 + 4 + 4

func (BinarySerializer) Encode(rec *Record) ([]byte, error) {
	buf := make([]byte, recordHeaderSize+len(rec.Data))
	buf[0] = byte(rec.Type)
	binary.BigEndian.PutUint64(buf[1:9], rec.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(rec.Time))
	binary.BigEndian.PutUint32(buf[17:21], rec.Index)
	binary.BigEndian.PutUint32(buf[21:25], uint32(len(rec.Data)))
	copy(buf[recordHeaderSize:], rec.Data)
	return buf, nil
}

func (BinarySerializer) Decode(b []byte) (*Record, error) {
	if len(b) < recordHeaderSize {
		return nil, ErrCorruptRecord
	}
	n := binary.BigEndian.Uint32(b[21:25])
	if len(b) != recordHeaderSize+int(n) {
		return nil, ErrCorruptRecord
	}
	data := make([]byte, n)
	copy(data, b[recordHeaderSize:])
	return &Record{
		Type:  RecordType(b[0]),
		Seq:   binary.BigEndian.Uint64(b[1:9]),
		Time:  int64(binary.BigEndian.Uint64(b[9:17])),
		Index: binary.BigEndian.Uint32(b[17:21]),
		Data:  data,
	}, nil
}
