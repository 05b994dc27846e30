package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/storage/types"
)

func testMatrix(t *testing.T) *types.Matrix {
	t.Helper()
	m, err := types.NewMatrix([][]float64{{1, 3, 5}, {2, 4, 6}})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	return m
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.gob")

	now := time.Now().UnixMilli()
	in := &Snapshot{RunID: "run-1", CreatedMs: now, Matrix: testMatrix(t)}

	if err := Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if out.RunID != "run-1" {
		t.Errorf("expected run_id=run-1, got %s", out.RunID)
	}
	if out.CreatedMs != now {
		t.Errorf("expected created=%d, got %d", now, out.CreatedMs)
	}
	if !out.Matrix.Equal(in.Matrix) {
		t.Errorf("matrix = %v, want %v", out.Matrix.Rows, in.Matrix.Rows)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be gone")
	}
}

func TestWriteLargeMatrix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "large.gob")

	b, _ := types.NewBuffer(2, 3000)
	for i := 0; i < 3000; i++ {
		b.Set(i, []float64{float64(i), float64(-i) / 2})
	}
	m := b.Freeze()

	if err := Write(path, &Snapshot{Matrix: m}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	read, err := ReadMatrix(path)
	if err != nil {
		t.Fatalf("ReadMatrix: %v", err)
	}
	if !read.Equal(m) {
		t.Error("matrix mismatch after round trip")
	}
	if read.At(1, 2999) != -1499.5 {
		t.Errorf("At(1, 2999) = %f", read.At(1, 2999))
	}
}

func TestWriteMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "data.gob")

	if err := Write(path, &Snapshot{Matrix: testMatrix(t)}); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Error("directory must not be created")
	}
}

func TestWriteRejectsBadMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob")
	bad := &types.Matrix{Dim: 2, Steps: 3, Rows: [][]float64{{1, 2, 3}}}

	if err := Write(path, &Snapshot{Matrix: bad}); !errors.Is(err, errors.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
	if err := Write(path, nil); err == nil {
		t.Error("expected error for nil snapshot")
	}
}

func TestReadDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.gob")
	if err := Write(path, &Snapshot{Matrix: testMatrix(t)}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"bad magic", func(b []byte) []byte { b[0] ^= 0xFF; return b }},
		{"bad version", func(b []byte) []byte { b[8] = 9; return b }},
		{"flipped payload", func(b []byte) []byte { b[len(b)-1] ^= 0xFF; return b }},
		{"truncated", func(b []byte) []byte { return b[:len(b)-4] }},
		{"header only", func(b []byte) []byte { return b[:headerSize] }},
		{"empty", func(b []byte) []byte { return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corrupt := tt.mutate(append([]byte(nil), data...))
			p := filepath.Join(dir, tt.name+".gob")
			if err := os.WriteFile(p, corrupt, 0644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}

			if _, err := Read(p); !errors.Is(err, errors.ErrCorruptSnapshot) {
				t.Errorf("expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.gob"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
