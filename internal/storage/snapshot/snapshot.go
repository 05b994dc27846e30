// Package snapshot persists a completed sample matrix as a single framed,
// checksummed gob record.
//
// Write never creates directories: the parent of the target path must
// already exist. The file appears under its final name only after it has
// been fully written and synced.
package snapshot

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xtxerr/trackrec/internal/storage/types"
)

// Write serializes s to path.
func Write(path string, s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	if err := s.Matrix.Validate(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(tmp), err)
	}

	w := bufio.NewWriter(f)
	if err := encode(w, s); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Read loads and verifies a snapshot file.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	s, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadMatrix is a convenience wrapper returning only the matrix.
func ReadMatrix(path string) (*types.Matrix, error) {
	s, err := Read(path)
	if err != nil {
		return nil, err
	}
	return s.Matrix, nil
}
