package main

import (
	"github.com/spf13/cobra"

	"github.com/rshade/adtech-emissions/internal/carbon"
)

func deviceCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "device CHANNEL DEVICE",
		Short: "Model an end user device for a property channel",
		Long:  "Model the per impression power and production emissions of an end user device\n" +
			"(personal_computer, smartphone, tablet, tv_system) on a channel (display, streaming).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := carbon.ParsePropertyChannel(args[0])
			if err != nil {
				return err
			}
			device, err := carbon.ParseEndUserDevice(args[1])
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)
			svc, err := opts.service(logger)
			if err != nil {
				return err
			}
			out, err := svc.ModelDevice(device, ch, nil, opts.trace(logger))
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), map[string]any{string(device): out})
		},
	}
}

func networkingCmd(opts *globalOptions) *cobra.Command {
	var connection, device string

	c := &cobra.Command{
		Use:   "networking",
		Short: "Model the networking energy of a device on a connection type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ct, err := carbon.ParseConnectionType(connection)
			if err != nil {
				return err
			}
			d, err := carbon.ParseEndUserDevice(device)
			if err != nil {
				return err
			}
			svc, err := opts.service(opts.logger(cmd))
			if err != nil {
				return err
			}
			out, err := svc.ModelNetworkingDevice(ct, d)
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), map[string]any{"networking": out})
		},
	}

	c.Flags().StringVarP(&connection, "connection", "c", string(carbon.ConnectionUnknown), "connection type: unknown, fixed, mobile")
	c.Flags().StringVarP(&device, "device", "d", string(carbon.DevicePersonalComputer), "device: personal_computer, smartphone, tablet, tv_system")
	return c
}
