package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/gesturemodality/internal/config"
	"github.com/ayusman/gesturemodality/internal/control"
)

func newControlCmd() *cobra.Command {
	var (
		network string
		address string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:       "control start|stop|close",
		Short:     "Send a speech control command to a running modality",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"start", "stop", "close"},
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := controlLine(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("network") {
				cfg.ControlNetwork = network
			}
			if cmd.Flags().Changed("address") {
				cfg.ControlAddress = address
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := control.Send(ctx, cfg.ControlNetwork, cfg.ControlAddress, line); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s\n", line, cfg.ControlAddress)
			return err
		},
	}

	cmd.Flags().StringVar(&network, "network", "", "control channel network (unix or tcp)")
	cmd.Flags().StringVar(&address, "address", "", "control channel address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "connect and write timeout")

	return cmd
}

func controlLine(arg string) (string, error) {
	switch arg {
	case "start":
		return control.CmdStart, nil
	case "stop":
		return control.CmdStop, nil
	case "close":
		return control.CmdClose, nil
	default:
		return "", fmt.Errorf("unknown control command %q (want start, stop or close)", arg)
	}
}
