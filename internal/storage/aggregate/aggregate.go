// Package aggregate computes per-axis statistics of a collected matrix,
// with optional DDSketch percentiles.
package aggregate

import (
	"fmt"
	"math"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/xtxerr/trackrec/internal/storage/types"
)

// AxisNames labels matrix rows in summaries. Rows beyond the list are
// named by index.
var AxisNames = []string{"x", "y", "z"}

// StreamingAggregate maintains running statistics for one coordinate axis.
type StreamingAggregate struct {
	count int64
	sum   float64
	min   float64
	max   float64

	// DDSketch for percentiles (nil if disabled)
	sketch *ddsketch.DDSketch
}

// New creates an aggregate. accuracy <= 0 disables percentiles.
func New(accuracy float64) *StreamingAggregate {
	agg := &StreamingAggregate{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}

	if accuracy > 0 {
		sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
		if err == nil {
			agg.sketch = sketch
		}
	}

	return agg
}

// Add adds a value to the aggregate.
func (a *StreamingAggregate) Add(value float64) {
	a.count++
	a.sum += value

	if value < a.min {
		a.min = value
	}
	if value > a.max {
		a.max = value
	}

	if a.sketch != nil {
		// DDSketch rejects NaN and infinities; they still count above.
		_ = a.sketch.Add(value)
	}
}

// Count returns the number of values added.
func (a *StreamingAggregate) Count() int64 {
	return a.count
}

// Percentiles holds sketch quantiles.
type Percentiles struct {
	P50 float64
	P90 float64
	P99 float64
}

// AxisSummary is the summary of one matrix row.
type AxisSummary struct {
	Axis  string
	Count int64
	Min   float64
	Max   float64
	Mean  float64

	// Percentiles is nil when sketches are disabled or empty.
	Percentiles *Percentiles
}

// Result returns the summary for the values added so far.
func (a *StreamingAggregate) Result(axis string) AxisSummary {
	s := AxisSummary{Axis: axis, Count: a.count}

	if a.count > 0 {
		s.Mean = a.sum / float64(a.count)
		s.Min = a.min
		s.Max = a.max
	}

	if a.sketch != nil && !a.sketch.IsEmpty() {
		p50, _ := a.sketch.GetValueAtQuantile(0.50)
		p90, _ := a.sketch.GetValueAtQuantile(0.90)
		p99, _ := a.sketch.GetValueAtQuantile(0.99)
		s.Percentiles = &Percentiles{P50: p50, P90: p90, P99: p99}
	}

	return s
}

// Summarize returns one summary per matrix row.
func Summarize(m *types.Matrix, accuracy float64) []AxisSummary {
	out := make([]AxisSummary, m.Dim)
	for r := 0; r < m.Dim; r++ {
		agg := New(accuracy)
		for _, v := range m.Row(r) {
			agg.Add(v)
		}
		out[r] = agg.Result(axisName(r))
	}
	return out
}

// LogArgs flattens a summary into slog key/value pairs.
func (s AxisSummary) LogArgs() []any {
	args := []any{
		"axis", s.Axis,
		"count", s.Count,
		"min", s.Min,
		"max", s.Max,
		"mean", s.Mean,
	}
	if s.Percentiles != nil {
		args = append(args,
			"p50", s.Percentiles.P50,
			"p90", s.Percentiles.P90,
			"p99", s.Percentiles.P99,
		)
	}
	return args
}

func axisName(r int) string {
	if r < len(AxisNames) {
		return AxisNames[r]
	}
	return fmt.Sprintf("axis%d", r)
}
