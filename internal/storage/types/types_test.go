package types

import (
	"testing"

	"github.com/xtxerr/trackrec/internal/errors"
)

func TestNewBufferRejectsBadShape(t *testing.T) {
	tests := []struct {
		name  string
		dim   int
		steps int
	}{
		{"zero dim", 0, 10},
		{"negative steps", 2, -1},
		{"zero steps", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBuffer(tt.dim, tt.steps); !errors.IsValidation(err) {
				t.Errorf("NewBuffer(%d, %d) error = %v, want validation error", tt.dim, tt.steps, err)
			}
		})
	}
}

func TestBufferStartsZeroed(t *testing.T) {
	b, err := NewBuffer(2, 4)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	m := b.Freeze()
	for r := 0; r < 2; r++ {
		for i := 0; i < 4; i++ {
			if m.At(r, i) != 0 {
				t.Errorf("At(%d, %d) = %f, want 0", r, i, m.At(r, i))
			}
		}
	}
}

func TestBufferColumnOrder(t *testing.T) {
	b, err := NewBuffer(2, 3)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	pairs := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	for i, p := range pairs {
		if err := b.Set(i, p); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}

	if b.Written() != 3 {
		t.Errorf("Written = %d, want 3", b.Written())
	}

	m := b.Freeze()
	want, _ := NewMatrix([][]float64{{1, 3, 5}, {2, 4, 6}})
	if !m.Equal(want) {
		t.Errorf("matrix = %v, want %v", m.Rows, want.Rows)
	}

	rows, cols := m.Shape()
	if rows != 2 || cols != 3 {
		t.Errorf("Shape = (%d, %d), want (2, 3)", rows, cols)
	}

	col := m.Column(1)
	if col[0] != 3 || col[1] != 4 {
		t.Errorf("Column(1) = %v, want [3 4]", col)
	}
}

func TestBufferSetErrors(t *testing.T) {
	b, _ := NewBuffer(2, 2)

	if err := b.Set(2, []float64{1, 2}); !errors.Is(err, errors.ErrStepOutOfRange) {
		t.Errorf("expected ErrStepOutOfRange, got %v", err)
	}
	if err := b.Set(-1, []float64{1, 2}); !errors.Is(err, errors.ErrStepOutOfRange) {
		t.Errorf("expected ErrStepOutOfRange, got %v", err)
	}
	if err := b.Set(0, []float64{1}); !errors.Is(err, errors.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}

	b.Freeze()
	if err := b.Set(0, []float64{1, 2}); !errors.Is(err, errors.ErrBufferFrozen) {
		t.Errorf("expected ErrBufferFrozen, got %v", err)
	}
}

func TestMatrixSamples(t *testing.T) {
	m, err := NewMatrix([][]float64{{1, 3}, {2, 4}})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}

	samples := m.Samples()
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[1].Step != 1 || samples[1].X() != 3 || samples[1].Y() != 4 {
		t.Errorf("unexpected sample: %+v", samples[1])
	}
}

func TestMatrixValidate(t *testing.T) {
	if _, err := NewMatrix([][]float64{{1, 2}, {3}}); !errors.Is(err, errors.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for ragged rows, got %v", err)
	}

	m := &Matrix{Dim: 2, Steps: 2, Rows: [][]float64{{1, 2}}}
	if err := m.Validate(); !errors.Is(err, errors.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}

	var nilM *Matrix
	if err := nilM.Validate(); err == nil {
		t.Error("expected error for nil matrix")
	}
}
