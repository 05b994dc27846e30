package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xtxerr/trackrec/config"
	"github.com/xtxerr/trackrec/internal/filter"
	"github.com/xtxerr/trackrec/internal/storage"
	"github.com/xtxerr/trackrec/internal/storage/aggregate"
	"github.com/xtxerr/trackrec/internal/storage/query"
)

type inspectFlags struct {
	head     int
	accuracy float64
	kalman   bool
}

func newInspectCmd() *cobra.Command {
	f := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a collected gob or parquet file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var err error
			if storage.FormatForPath(path) == storage.FormatParquet {
				err = inspectParquet(cmd, path, f)
			} else {
				err = inspectSnapshot(cmd.OutOrStdout(), path, f)
			}
			if err != nil || !f.kalman {
				return err
			}
			return inspectKalman(cmd.OutOrStdout(), path, f)
		},
	}

	cmd.Flags().IntVar(&f.head, "head", 5, "rows to print from the start of the run")
	cmd.Flags().Float64Var(&f.accuracy, "accuracy", config.DefaultSketchAccuracy, "percentile sketch relative accuracy")
	cmd.Flags().BoolVar(&f.kalman, "kalman", false, "also run the constant-velocity Kalman filter over the run")
	return cmd
}

func inspectSnapshot(out io.Writer, path string, f *inspectFlags) error {
	m, runID, err := storage.Load(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "file:   %s\n", path)
	fmt.Fprintf(out, "run:    %s\n", runID)
	fmt.Fprintf(out, "shape:  %d x %d\n\n", m.Dim, m.Steps)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AXIS\tCOUNT\tMIN\tMAX\tMEAN\tP50\tP90\tP99")
	for _, s := range aggregate.Summarize(m, f.accuracy) {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f", s.Axis, s.Count, s.Min, s.Max, s.Mean)
		if p := s.Percentiles; p != nil {
			fmt.Fprintf(tw, "\t%.4f\t%.4f\t%.4f\n", p.P50, p.P90, p.P99)
		} else {
			fmt.Fprint(tw, "\t-\t-\t-\n")
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if f.head > 0 {
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STEP\tVALUES")
		for i := 0; i < f.head && i < m.Steps; i++ {
			fmt.Fprintf(tw, "%d\t%v\n", i, m.Column(i))
		}
		return tw.Flush()
	}
	return nil
}

func inspectParquet(cmd *cobra.Command, path string, f *inspectFlags) error {
	svc, err := query.New(query.Options{})
	if err != nil {
		return err
	}
	defer svc.Close()

	d, err := svc.Describe(cmd.Context(), path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:   %s\n", path)
	fmt.Fprintf(out, "rows:   %d (steps %d..%d)\n\n", d.Rows, d.FirstStep, d.LastStep)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AXIS\tMIN\tMAX\tAVG")
	for _, a := range d.Axes {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\n", a.Name, a.Min, a.Max, a.Avg)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if f.head > 0 {
		rows, err := svc.Head(cmd.Context(), path, f.head)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STEP\tX\tY")
		for _, r := range rows {
			fmt.Fprintf(tw, "%d\t%.4f\t%.4f\n", r.Step, r.X, r.Y)
		}
		return tw.Flush()
	}
	return nil
}

// inspectKalman filters the run and reports the estimated track next to the
// measurements it was derived from.
func inspectKalman(out io.Writer, path string, f *inspectFlags) error {
	m, _, err := storage.Load(path)
	if err != nil {
		return err
	}
	est, err := filter.Track(filter.ConstantVelocity(filter.DefaultModelParams()), m)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "kalman estimate")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AXIS\tMIN\tMAX\tMEAN\tRMS RESIDUAL")
	for r, s := range aggregate.Summarize(est, 0) {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Axis, s.Min, s.Max, s.Mean, rmsResidual(m.Row(r), est.Row(r)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if f.head > 0 {
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STEP\tMEASURED\tESTIMATE")
		for i := 0; i < f.head && i < m.Steps; i++ {
			fmt.Fprintf(tw, "%d\t%v\t%.4f\n", i, m.Column(i), est.Column(i))
		}
		return tw.Flush()
	}
	return nil
}

func rmsResidual(measured, estimated []float64) float64 {
	if len(measured) == 0 {
		return 0
	}
	var sum float64
	for i := range measured {
		d := measured[i] - estimated[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(measured)))
}
