package types

import (
	"fmt"

	"github.com/xtxerr/trackrec/internal/errors"
)

// Sample is one decoded coordinate tuple together with its arrival index.
type Sample struct {
	Step   int
	Values []float64
}

// X returns the first coordinate.
func (s Sample) X() float64 { return s.Values[0] }

// Y returns the second coordinate.
func (s Sample) Y() float64 { return s.Values[1] }

// Buffer is a zeroed (dim, steps) matrix written column by column in arrival
// order. It is owned by a single collection loop and is not safe for
// concurrent use.
type Buffer struct {
	dim     int
	steps   int
	rows    [][]float64
	written int
	frozen  bool
}

// NewBuffer allocates a zeroed buffer of the given shape.
func NewBuffer(dim, steps int) (*Buffer, error) {
	if dim <= 0 {
		return nil, errors.NewInvalidValue("dim", dim, "must be positive")
	}
	if steps <= 0 {
		return nil, errors.NewInvalidValue("steps", steps, "must be positive")
	}

	// One backing array keeps each row contiguous.
	backing := make([]float64, dim*steps)
	rows := make([][]float64, dim)
	for r := range rows {
		rows[r] = backing[r*steps : (r+1)*steps : (r+1)*steps]
	}

	return &Buffer{
		dim:   dim,
		steps: steps,
		rows:  rows,
	}, nil
}

// Set stores values into column step.
func (b *Buffer) Set(step int, values []float64) error {
	if b.frozen {
		return errors.ErrBufferFrozen
	}
	if step < 0 || step >= b.steps {
		return fmt.Errorf("step %d of %d: %w", step, b.steps, errors.ErrStepOutOfRange)
	}
	if len(values) != b.dim {
		return fmt.Errorf("got %d values, want %d: %w", len(values), b.dim, errors.ErrShapeMismatch)
	}

	for r, v := range values {
		b.rows[r][step] = v
	}
	if step >= b.written {
		b.written = step + 1
	}
	return nil
}

// Written returns one past the highest column written so far.
func (b *Buffer) Written() int {
	return b.written
}

// Dim returns the number of rows.
func (b *Buffer) Dim() int {
	return b.dim
}

// Steps returns the number of columns.
func (b *Buffer) Steps() int {
	return b.steps
}

// Freeze ends the write phase and returns the matrix. The buffer rejects
// further writes; the returned matrix shares its storage.
func (b *Buffer) Freeze() *Matrix {
	b.frozen = true
	return &Matrix{Dim: b.dim, Steps: b.steps, Rows: b.rows}
}

// Matrix is a completed (Dim, Steps) sample matrix. Rows[r][i] is coordinate
// r of the i-th sample.
type Matrix struct {
	Dim   int
	Steps int
	Rows  [][]float64
}

// NewMatrix builds a matrix from row slices, validating the shape.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows: %w", errors.ErrShapeMismatch)
	}
	steps := len(rows[0])
	for r, row := range rows {
		if len(row) != steps {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", r, len(row), steps, errors.ErrShapeMismatch)
		}
	}
	return &Matrix{Dim: len(rows), Steps: steps, Rows: rows}, nil
}

// Shape returns (rows, columns).
func (m *Matrix) Shape() (int, int) {
	return m.Dim, m.Steps
}

// At returns the value at row r, column col.
func (m *Matrix) At(r, col int) float64 {
	return m.Rows[r][col]
}

// Row returns row r. The slice aliases the matrix.
func (m *Matrix) Row(r int) []float64 {
	return m.Rows[r]
}

// Column returns a copy of column col.
func (m *Matrix) Column(col int) []float64 {
	out := make([]float64, m.Dim)
	for r := range m.Rows {
		out[r] = m.Rows[r][col]
	}
	return out
}

// Samples returns the matrix columns as samples in arrival order.
func (m *Matrix) Samples() []Sample {
	out := make([]Sample, m.Steps)
	for i := range out {
		out[i] = Sample{Step: i, Values: m.Column(i)}
	}
	return out
}

// Validate checks that the declared shape matches the row data.
func (m *Matrix) Validate() error {
	if m == nil {
		return fmt.Errorf("nil matrix: %w", errors.ErrShapeMismatch)
	}
	if len(m.Rows) != m.Dim {
		return fmt.Errorf("have %d rows, declared %d: %w", len(m.Rows), m.Dim, errors.ErrShapeMismatch)
	}
	for r, row := range m.Rows {
		if len(row) != m.Steps {
			return fmt.Errorf("row %d has %d columns, declared %d: %w", r, len(row), m.Steps, errors.ErrShapeMismatch)
		}
	}
	return nil
}

// Equal reports whether two matrices have the same shape and values.
func (m *Matrix) Equal(other *Matrix) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Dim != other.Dim || m.Steps != other.Steps {
		return false
	}
	for r := range m.Rows {
		for i := range m.Rows[r] {
			if m.Rows[r][i] != other.Rows[r][i] {
				return false
			}
		}
	}
	return true
}
