package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xtxerr/trackrec/config"
	"github.com/xtxerr/trackrec/internal/filter"
	"github.com/xtxerr/trackrec/internal/logging"
	"github.com/xtxerr/trackrec/internal/simulate"
	"golang.org/x/sync/errgroup"
)

type simulateFlags struct {
	steps    int
	seed     uint64
	interval time.Duration
	noise    float64
	truth    bool
	filtered bool
}

func newSimulateCmd(g *globalFlags) *cobra.Command {
	f := &simulateFlags{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Stream a simulated bouncing ball to the collector.",
		Long: `simulate integrates a ball launched from (0, 1) at (10, 100) m/s under ` +
			`gravity and sends its noisy position once per step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, g, f)
		},
	}

	cmd.Flags().IntVarP(&f.steps, "steps", "n", config.DefaultSteps, "number of samples to send")
	cmd.Flags().Uint64Var(&f.seed, "seed", uint64(time.Now().UnixNano()), "noise seed")
	cmd.Flags().DurationVar(&f.interval, "interval", 0, "pause between samples")
	cmd.Flags().Float64Var(&f.noise, "noise", simulate.DefaultParams().NoiseStdDev, "sensor noise standard deviation")
	cmd.Flags().BoolVar(&f.truth, "truth", false, "send true positions instead of measurements")
	cmd.Flags().BoolVar(&f.filtered, "filtered", false, "send Kalman filtered estimates instead of measurements")
	cmd.MarkFlagsMutuallyExclusive("truth", "filtered")
	return cmd
}

func runSimulate(cmd *cobra.Command, g *globalFlags, f *simulateFlags) error {
	if f.steps <= 0 {
		return fmt.Errorf("--steps must be positive")
	}

	c, err := g.dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	params := simulate.DefaultParams()
	params.NoiseStdDev = f.noise
	sim := simulate.NewBallistic(params, f.seed)

	var kf *filter.Kalman
	if f.filtered {
		kf, err = filter.New(filter.ConstantVelocity(filter.DefaultModelParams()))
		if err != nil {
			return err
		}
	}

	log := logging.Component("simulate")
	eg, ctx := errgroup.WithContext(cmd.Context())
	measurements := make(chan simulate.Measurement, 64)

	// Generator
	eg.Go(func() error {
		defer close(measurements)
		for i := 0; i < f.steps; i++ {
			select {
			case measurements <- sim.Next():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	// Sender
	eg.Go(func() error {
		for m := range measurements {
			x, y := m.X, m.Y
			switch {
			case f.truth:
				x, y = m.TrueX, m.TrueY
			case kf != nil:
				est, err := kf.Step([]float64{m.X, m.Y})
				if err != nil {
					return fmt.Errorf("step %d: %w", m.Step, err)
				}
				x, y = est[0], est[1]
			}
			if err := c.Send(ctx, x, y); err != nil {
				return fmt.Errorf("step %d: %w", m.Step, err)
			}
			if f.interval > 0 {
				if err := sleep(ctx, f.interval); err != nil {
					return err
				}
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	log.Debug("simulation sent", "steps", c.Sent(), "endpoint", c.Endpoint())
	fmt.Fprintf(cmd.OutOrStdout(), "sent %d samples to %s\n", c.Sent(), c.Endpoint())
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
