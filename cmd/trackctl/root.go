package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/xtxerr/trackrec/config"
	"github.com/xtxerr/trackrec/internal/client"
	"github.com/xtxerr/trackrec/internal/validation"
)

// globalFlags are shared by the commands that talk to a collector.
type globalFlags struct {
	endpoint string
	timeout  time.Duration
}

// newRootCmd builds the full command tree.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "trackctl",
		Short: "Send samples to trackrecd and inspect collected runs.",
		Long: `trackctl talks to a trackrecd collector over ZeroMQ. It can replay a ` +
			`simulated bouncing ball, send single samples, run an interactive shell ` +
			`and summarize the gob or parquet files the collector writes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validation.ValidateDialEndpoint(g.endpoint)
		},
	}

	root.PersistentFlags().StringVarP(&g.endpoint, "endpoint", "e",
		"tcp://127.0.0.1:5555", "collector endpoint")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout",
		config.DefaultClientTimeoutMs*time.Millisecond, "time to wait for each ack (0 waits forever)")

	root.AddCommand(
		newSimulateCmd(g),
		newSendCmd(g),
		newShellCmd(g),
		newInspectCmd(),
	)
	return root
}

func (g *globalFlags) dial(ctx context.Context) (*client.Client, error) {
	return client.Dial(ctx, g.endpoint, g.timeout)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
