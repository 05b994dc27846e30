package parquet

import (
	"fmt"
	"os"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/xtxerr/trackrec/internal/constants"
	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/storage/types"
)

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// RunID is stored as file key/value metadata when set.
	RunID string
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// MetadataRunID is the key/value metadata key holding the run ID.
const MetadataRunID = "trackrec.run_id"

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression: CompressionZstd,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case constants.CompressionSnappy:
		return CompressionSnappy
	case constants.CompressionZstd:
		return CompressionZstd
	case constants.CompressionLZ4:
		return CompressionLZ4
	case constants.CompressionGzip:
		return CompressionGzip
	case constants.CompressionNone, "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// SampleRow is one matrix column in Parquet format.
type SampleRow struct {
	Step int64   `parquet:"step"`
	X    float64 `parquet:"x"`
	Y    float64 `parquet:"y"`
}

// MatrixToRows converts a 2-row matrix into rows ordered by step.
func MatrixToRows(m *types.Matrix) ([]SampleRow, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Dim != 2 {
		return nil, fmt.Errorf("parquet rows hold 2 coordinates, matrix has %d: %w", m.Dim, errors.ErrShapeMismatch)
	}

	rows := make([]SampleRow, m.Steps)
	for i := range rows {
		rows[i] = SampleRow{
			Step: int64(i),
			X:    m.Rows[0][i],
			Y:    m.Rows[1][i],
		}
	}
	return rows, nil
}

// RowsToMatrix rebuilds a matrix from rows. Steps must cover 0..len(rows)-1
// exactly once, in any order.
func RowsToMatrix(rows []SampleRow) (*types.Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows: %w", errors.ErrShapeMismatch)
	}

	n := len(rows)
	xs := make([]float64, n)
	ys := make([]float64, n)
	seen := make([]bool, n)

	for _, r := range rows {
		if r.Step < 0 || r.Step >= int64(n) || seen[r.Step] {
			return nil, fmt.Errorf("step %d out of sequence: %w", r.Step, errors.ErrShapeMismatch)
		}
		seen[r.Step] = true
		xs[r.Step] = r.X
		ys[r.Step] = r.Y
	}

	return types.NewMatrix([][]float64{xs, ys})
}

// SampleWriter writes sample rows to a Parquet file.
type SampleWriter struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[SampleRow]
	rowCount int64
	closed   bool
}

// NewSampleWriter creates a new sample Parquet writer. The parent directory
// of path must exist.
func NewSampleWriter(path string, opts Options) (*SampleWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	writerOpts := []parquet.WriterOption{
		parquet.Compression(getCompression(opts.Compression)),
	}
	if opts.RunID != "" {
		writerOpts = append(writerOpts, parquet.KeyValueMetadata(MetadataRunID, opts.RunID))
	}

	writer := parquet.NewGenericWriter[SampleRow](f, writerOpts...)

	return &SampleWriter{
		path:   path,
		file:   f,
		writer: writer,
	}, nil
}

// Write writes rows to the Parquet file.
func (w *SampleWriter) Write(rows []SampleRow) error {
	if len(rows) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close closes the writer.
func (w *SampleWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}

	return w.file.Close()
}

// RowCount returns the number of rows written.
func (w *SampleWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the file path.
func (w *SampleWriter) Path() string {
	return w.path
}

// WriteMatrix writes m to path in one go. The rows go to path+".tmp" first
// and the file appears under path only once the footer is written.
func WriteMatrix(path string, m *types.Matrix, opts Options) error {
	rows, err := MatrixToRows(m)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	w, err := NewSampleWriter(tmp, opts)
	if err != nil {
		return err
	}

	if err := w.Write(rows); err != nil {
		w.Close()
		os.Remove(tmp)
		return err
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = fmt.Errorf("parquet writer is closed")
