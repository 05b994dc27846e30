package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xtxerr/trackrec/internal/constants"
	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/storage/parquet"
	"github.com/xtxerr/trackrec/internal/storage/snapshot"
	"github.com/xtxerr/trackrec/internal/storage/types"
)

// Format selects the on-disk representation of a matrix.
type Format string

const (
	// FormatGob is a checksummed gob snapshot of the whole matrix.
	FormatGob Format = constants.FormatGob

	// FormatParquet stores one (step, x, y) row per sample.
	FormatParquet Format = constants.FormatParquet
)

// ParseFormat parses a config format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatGob, "":
		return FormatGob, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%q: %w", s, errors.ErrInvalidFormat)
	}
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return FormatParquet
	}
	return FormatGob
}

// Meta carries run information stored next to the matrix.
type Meta struct {
	RunID       string
	Created     time.Time
	Compression string // parquet only
}

// Persist writes m to path in the given format.
func Persist(path string, format Format, m *types.Matrix, meta Meta) error {
	if meta.Created.IsZero() {
		meta.Created = time.Now()
	}

	var err error
	switch format {
	case FormatGob, "":
		err = snapshot.Write(path, &snapshot.Snapshot{
			RunID:     meta.RunID,
			CreatedMs: meta.Created.UnixMilli(),
			Matrix:    m,
		})
	case FormatParquet:
		opts := parquet.DefaultOptions()
		if meta.Compression != "" {
			opts.Compression = parquet.ParseCompressionType(meta.Compression)
		}
		opts.RunID = meta.RunID
		err = parquet.WriteMatrix(path, m, opts)
	default:
		return fmt.Errorf("%q: %w", format, errors.ErrInvalidFormat)
	}

	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", format, path, errors.ErrPersist, err)
	}
	return nil
}

// Load reads a matrix previously written by Persist, choosing the decoder
// from the file extension. It returns the stored run ID when available.
func Load(path string) (*types.Matrix, string, error) {
	switch FormatForPath(path) {
	case FormatParquet:
		r, err := parquet.NewSampleReader(path)
		if err != nil {
			return nil, "", err
		}
		defer r.Close()

		rows, err := r.ReadAll()
		if err != nil {
			return nil, "", fmt.Errorf("read rows: %w", err)
		}
		m, err := parquet.RowsToMatrix(rows)
		if err != nil {
			return nil, "", err
		}
		return m, r.RunID(), nil
	default:
		s, err := snapshot.Read(path)
		if err != nil {
			return nil, "", err
		}
		return s.Matrix, s.RunID, nil
	}
}
