package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/xtxerr/trackrec/internal/storage/types"
)

// SampleReader reads sample rows from a Parquet file.
type SampleReader struct {
	file   *os.File
	meta   *parquet.File
	reader *parquet.GenericReader[SampleRow]
	path   string
}

// NewSampleReader creates a new sample Parquet reader.
func NewSampleReader(path string) (*SampleReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	meta, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[SampleRow](meta)

	return &SampleReader{
		file:   f,
		meta:   meta,
		reader: reader,
		path:   path,
	}, nil
}

// ReadAll reads all rows from the file.
func (r *SampleReader) ReadAll() ([]SampleRow, error) {
	rows := make([]SampleRow, r.reader.NumRows())

	n, err := r.reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return rows[:n], nil
}

// NumRows returns the total number of rows in the file.
func (r *SampleReader) NumRows() int64 {
	return r.reader.NumRows()
}

// RunID returns the run ID stored in the file metadata, or "".
func (r *SampleReader) RunID() string {
	id, _ := r.meta.Lookup(MetadataRunID)
	return id
}

// Close closes the reader.
func (r *SampleReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *SampleReader) Path() string {
	return r.path
}

// ReadMatrix loads a matrix written by WriteMatrix.
func ReadMatrix(path string) (*types.Matrix, error) {
	r, err := NewSampleReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return RowsToMatrix(rows)
}
