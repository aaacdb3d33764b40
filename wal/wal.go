package wal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const frameHeaderSize = 8 // length(4) + CRC(4)

// Config defines configuration for a WAL instance. Zero values fall
// back to sane defaults inside Open.
type Config struct {
	Dir             string
	SegmentSize     uint64
	SegmentDuration time.Duration
	Serializer      Serializer
	FlushInterval   time.Duration
}

// WAL is a segmented append-only log of register mutations. The active
// segment is current.wal; finalized segments are numbered and listed in
// wal_index.json.
type WAL struct {
	cfg             Config
	mu              sync.Mutex
	file            *os.File
	writer          *bufio.Writer
	lastSeq         uint64
	segmentID       int
	segmentStartSeq uint64
	bytesWritten    uint64
	lastRotationAt  time.Time
}

func Open(cfg Config) (*WAL, error) {
	if cfg.Dir == "" {
		cfg.Dir = "./wal_data"
	}
	if cfg.SegmentSize == 0 {
		cfg.SegmentSize = 2 * 1024 * 1024
	}
	if cfg.SegmentDuration == 0 {
		cfg.SegmentDuration = 5 * time.Minute
	}
	if cfg.Serializer == nil {
		cfg.Serializer = BinarySerializer{}
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	var segID int
	var seq uint64
	if last, _ := LoadLastIndex(cfg.Dir); last != nil {
		segID, _ = strconv.Atoi(strings.TrimSuffix(filepath.Base(last.File), ".wal"))
		seq = last.LastSeq
	}

	path := filepath.Join(cfg.Dir, "current.wal")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	w := &WAL{
		cfg:             cfg,
		file:            f,
		segmentID:       segID,
		segmentStartSeq: seq + 1,
		lastSeq:         seq,
		lastRotationAt:  time.Now(),
	}

	if err := w.recoverCurrentState(); err != nil {
		return nil, fmt.Errorf("recover wal: %w", err)
	}
	if _, err := w.file.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}
	w.writer = bufio.NewWriterSize(f, 1<<20)

	if cfg.FlushInterval > 0 {
		go w.autoFlush()
	}
	return w, nil
}

// Append writes one record. rec.Seq must already be assigned by the
// caller's sequencer and be greater than every previously appended seq.
func (w *WAL) Append(rec *Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := w.cfg.Serializer.Encode(rec)
	if err != nil {
		return err
	}

	recordSize := frameHeaderSize + len(data)
	if w.shouldRotate(recordSize) {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	if err := writeFrame(w.writer, data); err != nil {
		return err
	}
	w.lastSeq = rec.Seq
	w.bytesWritten += uint64(recordSize)
	return nil
}

// LastSeq returns the sequence of the last appended or recovered record.
func (w *WAL) LastSeq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeq
}

func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes and finalizes the active segment into the index.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_ = w.writer.Flush()
	_ = w.file.Sync()
	_ = w.file.Close()

	newFile := fmt.Sprintf("%06d.wal", w.segmentID+1)
	oldPath := filepath.Join(w.cfg.Dir, "current.wal")
	newPath := filepath.Join(w.cfg.Dir, newFile)

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}
	entry := IndexEntry{
		File:      newFile,
		FirstSeq:  w.segmentStartSeq,
		LastSeq:   w.lastSeq,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	_ = AppendIndexEntry(w.cfg.Dir, entry)
	log.Printf("[wal] finalized %s (seq %d-%d)", newFile, w.segmentStartSeq, w.lastSeq)
	return nil
}

// ReplayFrom replays every record with Seq > snapshotSeq, in order,
// across finalized segments and the active one.
func (w *WAL) ReplayFrom(snapshotSeq uint64, apply func(*Record)) error {
	return Replay(w.cfg.Dir, w.cfg.Serializer, snapshotSeq, apply)
}

// Replay walks a WAL directory without opening it for writing; used at
// startup before the WAL is reopened.
func Replay(dir string, ser Serializer, snapshotSeq uint64, apply func(*Record)) error {
	if ser == nil {
		ser = BinarySerializer{}
	}
	index, err := LoadAllIndex(dir)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	sort.Slice(index, func(a, b int) bool {
		return index[a].FirstSeq < index[b].FirstSeq
	})

	for _, seg := range index {
		if seg.LastSeq <= snapshotSeq {
			continue
		}
		if err := replayFile(filepath.Join(dir, seg.File), ser, snapshotSeq, apply, false); err != nil {
			return err
		}
	}

	current := filepath.Join(dir, "current.wal")
	if _, err := os.Stat(current); err == nil {
		if err := replayFile(current, ser, snapshotSeq, apply, true); err != nil {
			return err
		}
	}
	return nil
}

// replayFile streams one segment through apply. active marks the
// current (not yet finalized) segment, whose tail may be torn by a
// crash mid-append; such a tail ends the replay cleanly rather than
// failing startup, and Open truncates it when the log is reopened.
func replayFile(path string, ser Serializer, snapshotSeq uint64, apply func(*Record), active bool) error {
	r, err := OpenReader(path, ser)
	if err != nil {
		return err
	}
	defer r.Close()
	for r.Next() {
		rec := r.Record()
		if rec.Seq <= snapshotSeq {
			continue
		}
		apply(rec)
	}
	err = r.Err()
	if err == nil || err == io.EOF {
		return nil
	}
	if active && (errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, ErrCRCMismatch)) {
		return nil
	}
	return err
}

// TruncateBefore removes finalized segments fully covered by a
// snapshot at seq. The active segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	index, err := LoadAllIndex(w.cfg.Dir)
	if err != nil {
		return err
	}
	var kept []IndexEntry
	for _, seg := range index {
		if seg.LastSeq <= seq {
			_ = os.Remove(filepath.Join(w.cfg.Dir, seg.File))
			continue
		}
		kept = append(kept, seg)
	}
	return rewriteIndex(w.cfg.Dir, kept)
}

func rewriteIndex(dir string, entries []IndexEntry) error {
	path := filepath.Join(dir, "wal_index.json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, e := range entries {
		if err := AppendIndexEntry(dir, e); err != nil {
			return err
		}
	}
	return nil
}

// -------------------- internals --------------------

func (w *WAL) shouldRotate(nextSize int) bool {
	return w.bytesWritten+uint64(nextSize) >= w.cfg.SegmentSize ||
		time.Since(w.lastRotationAt) >= w.cfg.SegmentDuration
}

func (w *WAL) rotate() error {
	_ = w.writer.Flush()
	_ = w.file.Sync()
	_ = w.file.Close()

	newID := w.segmentID + 1
	newFile := fmt.Sprintf("%06d.wal", newID)
	oldPath := filepath.Join(w.cfg.Dir, "current.wal")
	newPath := filepath.Join(w.cfg.Dir, newFile)

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}
	entry := IndexEntry{
		File:      newFile,
		FirstSeq:  w.segmentStartSeq,
		LastSeq:   w.lastSeq,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	_ = AppendIndexEntry(w.cfg.Dir, entry)

	f, err := os.OpenFile(oldPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.writer = bufio.NewWriterSize(f, 1<<20)
	w.segmentID = newID
	w.segmentStartSeq = w.lastSeq + 1
	w.bytesWritten = 0
	w.lastRotationAt = time.Now()

	log.Printf("[wal] rotated to %s (seq %d-%d)", newFile, entry.FirstSeq, entry.LastSeq)
	return nil
}

func (w *WAL) autoFlush() {
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()
	for range ticker.C {
		_ = w.Sync()
	}
}

// recoverCurrentState scans the active segment, recovers the last seq,
// and truncates a torn tail left by a crash mid-append.
func (w *WAL) recoverCurrentState() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		w.bytesWritten = 0
		return nil
	}
	path := filepath.Join(w.cfg.Dir, "current.wal")
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var (
		validBytes int64
		header     [frameHeaderSize]byte
	)
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if err == io.EOF {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return w.truncateCurrent(validBytes)
			}
			return err
		}
		payloadLen := binary.LittleEndian.Uint32(header[:4])
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
				return w.truncateCurrent(validBytes)
			}
			return err
		}
		checksum := binary.LittleEndian.Uint32(header[4:])
		if crc32.ChecksumIEEE(payload) != checksum {
			return w.truncateCurrent(validBytes)
		}
		rec, err := w.cfg.Serializer.Decode(payload)
		if err != nil {
			return err
		}
		w.lastSeq = rec.Seq
		validBytes += int64(frameHeaderSize + len(payload))
	}
	w.bytesWritten = uint64(validBytes)
	return nil
}

func (w *WAL) truncateCurrent(validBytes int64) error {
	if err := w.file.Truncate(validBytes); err != nil {
		return err
	}
	if _, err := w.file.Seek(validBytes, io.SeekStart); err != nil {
		return err
	}
	w.bytesWritten = uint64(validBytes)
	return nil
}

// writeFrame prefixes the payload with length and CRC32.
func writeFrame(w io.Writer, payload []byte) error {
	var header [frameHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[4:], crc32.ChecksumIEEE(payload))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
