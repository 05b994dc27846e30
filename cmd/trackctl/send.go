package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSendCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send X Y...",
		Short: "Send one sample and print the acknowledgment.",
		Example: `  trackctl send 1.5 2
  trackctl send -- -1.5 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(args)
			if err != nil {
				return err
			}

			c, err := g.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Send(cmd.Context(), values...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func parseValues(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %q is not a number", i, f)
		}
		values[i] = v
	}
	return values, nil
}
