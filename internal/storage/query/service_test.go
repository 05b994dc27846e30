package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xtxerr/trackrec/internal/storage/parquet"
	"github.com/xtxerr/trackrec/internal/storage/types"
)

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.parquet")
	m, err := types.NewMatrix([][]float64{{1, 3, 5}, {2, 4, 6}})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	if err := parquet.WriteMatrix(path, m, parquet.DefaultOptions()); err != nil {
		t.Fatalf("WriteMatrix: %v", err)
	}
	return path
}

func TestDescribe(t *testing.T) {
	path := writeScenario(t)

	svc, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer svc.Close()

	d, err := svc.Describe(context.Background(), path)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}

	if d.Rows != 3 {
		t.Errorf("expected 3 rows, got %d", d.Rows)
	}
	if d.FirstStep != 0 || d.LastStep != 2 {
		t.Errorf("step range = [%d, %d], want [0, 2]", d.FirstStep, d.LastStep)
	}
	if len(d.Axes) != 2 {
		t.Fatalf("expected 2 axes, got %d", len(d.Axes))
	}

	x := d.Axes[0]
	if x.Min != 1 || x.Max != 5 || x.Avg != 3 {
		t.Errorf("x stats = %+v", x)
	}
	y := d.Axes[1]
	if y.Min != 2 || y.Max != 6 || y.Avg != 4 {
		t.Errorf("y stats = %+v", y)
	}
}

func TestHead(t *testing.T) {
	path := writeScenario(t)

	svc, err := New(Options{MemoryLimit: "256MB"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer svc.Close()

	rows, err := svc.Head(context.Background(), path, 2)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Step != 1 || rows[1].X != 3 || rows[1].Y != 4 {
		t.Errorf("unexpected row: %+v", rows[1])
	}

	stats := svc.Stats()
	if stats.QueriesExecuted != 1 || stats.RowsReturned != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDescribeMissingFile(t *testing.T) {
	svc, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer svc.Close()

	if _, err := svc.Describe(context.Background(), filepath.Join(t.TempDir(), "none.parquet")); err == nil {
		t.Error("expected error for missing file")
	}
	if svc.Stats().Errors != 1 {
		t.Errorf("expected 1 error counted, got %d", svc.Stats().Errors)
	}
}
