package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/storage/types"
)

// File format (little-endian):
//   - Header: 8 bytes magic + 4 bytes version
//   - One record: [4 bytes length][4 bytes crc32][gob payload]
//
// The payload is a gob-encoded Snapshot.

const (
	snapMagic        = 0x54524B534E415001 // "TRKSNAP" + version 1
	snapVersion      = 1
	headerSize       = 12
	recordHeaderSize = 8

	// maxPayloadSize guards against reading a garbage length.
	maxPayloadSize = 1 << 30
)

// Snapshot is the persisted form of one collection run.
type Snapshot struct {
	RunID     string
	CreatedMs int64
	Matrix    *types.Matrix
}

// encode writes the header and the single framed record to w.
func encode(w io.Writer, s *Snapshot) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(s); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	var header [headerSize + recordHeaderSize]byte
	binary.LittleEndian.PutUint64(header[0:8], snapMagic)
	binary.LittleEndian.PutUint32(header[8:12], snapVersion)
	binary.LittleEndian.PutUint32(header[12:16], uint32(payload.Len()))
	binary.LittleEndian.PutUint32(header[16:20], crc32.ChecksumIEEE(payload.Bytes()))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload.Bytes())
	return err
}

// decode reads and verifies a snapshot from r.
func decode(r io.Reader) (*Snapshot, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read header: %v: %w", err, errors.ErrCorruptSnapshot)
	}

	magic := binary.LittleEndian.Uint64(header[0:8])
	if magic != snapMagic {
		return nil, fmt.Errorf("invalid magic: expected %x, got %x: %w", uint64(snapMagic), magic, errors.ErrCorruptSnapshot)
	}

	version := binary.LittleEndian.Uint32(header[8:12])
	if version != snapVersion {
		return nil, fmt.Errorf("unsupported version: %d: %w", version, errors.ErrCorruptSnapshot)
	}

	var rec [recordHeaderSize]byte
	if _, err := io.ReadFull(r, rec[:]); err != nil {
		return nil, fmt.Errorf("read record header: %v: %w", err, errors.ErrCorruptSnapshot)
	}

	length := binary.LittleEndian.Uint32(rec[0:4])
	expectedCRC := binary.LittleEndian.Uint32(rec[4:8])

	if length > maxPayloadSize {
		return nil, fmt.Errorf("record too large: %d bytes: %w", length, errors.ErrCorruptSnapshot)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read payload: %v: %w", err, errors.ErrCorruptSnapshot)
	}

	if actualCRC := crc32.ChecksumIEEE(payload); actualCRC != expectedCRC {
		return nil, fmt.Errorf("CRC mismatch: expected %x, got %x: %w", expectedCRC, actualCRC, errors.ErrCorruptSnapshot)
	}

	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&s); err != nil {
		return nil, fmt.Errorf("gob decode: %v: %w", err, errors.ErrCorruptSnapshot)
	}
	if err := s.Matrix.Validate(); err != nil {
		return nil, fmt.Errorf("matrix: %v: %w", err, errors.ErrCorruptSnapshot)
	}

	return &s, nil
}
