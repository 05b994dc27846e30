package aggregate

import (
	"math"
	"testing"

	"github.com/xtxerr/trackrec/internal/storage/types"
)

func TestSummarizeScenario(t *testing.T) {
	m, _ := types.NewMatrix([][]float64{{1, 3, 5}, {2, 4, 6}})

	got := Summarize(m, 0.01)
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}

	x := got[0]
	if x.Axis != "x" || x.Count != 3 || x.Min != 1 || x.Max != 5 || x.Mean != 3 {
		t.Errorf("x summary = %+v", x)
	}
	y := got[1]
	if y.Axis != "y" || y.Min != 2 || y.Max != 6 || y.Mean != 4 {
		t.Errorf("y summary = %+v", y)
	}
	if x.Percentiles == nil {
		t.Fatal("expected percentiles")
	}
}

func TestPercentileAccuracy(t *testing.T) {
	agg := New(0.01)
	for i := 1; i <= 1000; i++ {
		agg.Add(float64(i))
	}

	s := agg.Result("x")
	if s.Percentiles == nil {
		t.Fatal("expected percentiles")
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"p50", s.Percentiles.P50, 500},
		{"p90", s.Percentiles.P90, 900},
		{"p99", s.Percentiles.P99, 990},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want)/c.want > 0.02 {
			t.Errorf("%s = %f, want ~%f", c.name, c.got, c.want)
		}
	}
}

func TestPercentilesDisabled(t *testing.T) {
	agg := New(0)
	agg.Add(1)
	agg.Add(2)

	s := agg.Result("x")
	if s.Percentiles != nil {
		t.Error("percentiles should be disabled")
	}
	if s.Mean != 1.5 {
		t.Errorf("mean = %f, want 1.5", s.Mean)
	}

	args := s.LogArgs()
	if len(args) != 10 {
		t.Errorf("expected 10 log args without percentiles, got %d", len(args))
	}
}

func TestEmptyAggregate(t *testing.T) {
	s := New(0.01).Result("x")
	if s.Count != 0 || s.Min != 0 || s.Max != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if s.Percentiles != nil {
		t.Error("empty sketch should report no percentiles")
	}
}

func TestAxisNames(t *testing.T) {
	m, _ := types.NewMatrix([][]float64{{1}, {2}, {3}, {4}})
	got := Summarize(m, 0)
	if got[2].Axis != "z" || got[3].Axis != "axis3" {
		t.Errorf("axis names = %q, %q", got[2].Axis, got[3].Axis)
	}
}
