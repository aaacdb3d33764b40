// Package wire defines the request/response messages of the register
// store RPC surface and the codec that moves them over gRPC. Messages
// are plain structs encoded with gob through a registered codec, so the
// API layer has no generated code to keep in sync.
package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// CodecName is the content-subtype clients must request.
const CodecName = "regob"

// -------------------- Messages --------------------

type GetRequest struct {
	Index uint32
}

type GetResponse struct {
	Found bool
	Value []byte
}

type SetRequest struct {
	Index uint32
	Value []byte
}

type SetResponse struct {
	Seq uint64
}

type SwapRequest struct {
	Index uint32
	Value []byte
}

type SwapResponse struct {
	Found bool
	Prev  []byte
	Seq   uint64
}

type CasRequest struct {
	Index uint32
	// ExpectEmpty distinguishes "expect the register to be empty" from
	// "expect an empty byte string".
	ExpectEmpty bool
	Expected    []byte
	Value       []byte
}

type CasResponse struct {
	Swapped bool
	Seq     uint64
}

type TakeRequest struct {
	Index uint32
}

type TakeResponse struct {
	Found bool
	Prev  []byte
	Seq   uint64
}

type SnapshotRequest struct {
	// MaxEntries caps the number of returned registers; 0 means all.
	// (Also keeps the message gob-encodable: gob rejects structs with
	// no exported fields.)
	MaxEntries uint32
}

type SnapshotEntry struct {
	Index uint32
	Value []byte
}

type SnapshotResponse struct {
	Length  uint32
	Entries []SnapshotEntry
}

// -------------------- Codec --------------------

// Codec implements grpc encoding.Codec over gob.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("wire: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("wire: unmarshal: %w", err)
	}
	return nil
}

func (Codec) Name() string {
	return CodecName
}
