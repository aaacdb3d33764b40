package wal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"os"
)

var ErrCRCMismatch = errors.New("wal: crc mismatch")

// Reader iterates the frames of a single WAL segment file.
type Reader struct {
	file   *os.File
	reader *bufio.Reader
	ser    Serializer
	rec    *Record
	err    error
}

func OpenReader(path string, ser Serializer) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if ser == nil {
		ser = BinarySerializer{}
	}
	return &Reader{
		file:   f,
		reader: bufio.NewReader(f),
		ser:    ser,
	}, nil
}

func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r.reader, header[:]); err != nil {
		r.err = err
		return false
	}
	payloadLen := binary.LittleEndian.Uint32(header[:4])
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r.reader, payload); err != nil {
		r.err = err
		return false
	}
	if crc32.ChecksumIEEE(payload) != binary.LittleEndian.Uint32(header[4:]) {
		r.err = ErrCRCMismatch
		return false
	}
	rec, err := r.ser.Decode(payload)
	if err != nil {
		r.err = err
		return false
	}
	r.rec = rec
	return true
}

func (r *Reader) Record() *Record {
	return r.rec
}

// Err returns the error that stopped iteration; io.EOF means a clean end.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) Close() {
	_ = r.file.Close()
}
