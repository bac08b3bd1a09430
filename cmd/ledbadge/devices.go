package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/config"
	"github.com/muurk/ledbadge/internal/discovery"
	"github.com/muurk/ledbadge/internal/ui"
)

func newDevicesCmd(a *app) *cobra.Command {
	var (
		noScan      bool
		scanTimeout int
	)

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List displays that messages can be sent to",
		Long: `List configured device profiles, display bridges announced on the local
network over mDNS, and serial ports that may have a badge attached.`,
		Example: `  # Everything, scanning the network for 5 seconds
  ledbadge devices

  # Configured profiles and serial ports only
  ledbadge devices --no-scan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := a.deviceSources(!noScan, scanTimeout, cmd.ErrOrStderr())
			devices, err := badge.ListDevices(cmd.Context(), sources...)
			if err != nil {
				return err
			}

			table := ui.NewTable("", "NAME", "SINK", "ADDRESS", "FOUND BY", "DETAILS")
			for _, d := range devices {
				marker := ""
				if d.Default {
					marker = ui.DefaultMarker
				}
				table.AddRow(marker, d.Name, string(d.Kind), d.Address, d.Source, d.Details)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noScan, "no-scan", false, "Skip mDNS discovery")
	cmd.Flags().IntVar(&scanTimeout, "scan-timeout", 0, "mDNS scan timeout in seconds (default: discover_timeout)")

	cmd.AddCommand(newDevicesAddCmd(a), newDevicesRemoveCmd(a), newDevicesDefaultCmd(a))
	return cmd
}

// deviceSources returns where displays are looked for: the config file,
// mDNS when scan is set, and serial ports
func (a *app) deviceSources(scan bool, scanTimeout int, progress io.Writer) []badge.DeviceSource {
	sources := []badge.DeviceSource{badge.RegistrySource{Registry: a.registry}}
	if scan {
		timeout := scanTimeout
		if timeout <= 0 && a.registry.Preferences != nil {
			timeout = a.registry.Preferences.DiscoverTimeout
		}
		scanner := discovery.NewScanner()
		if timeout > 0 {
			scanner.Timeout = time.Duration(timeout) * time.Second
		}
		if progress != nil {
			fmt.Fprintf(progress, "Scanning for display bridges (timeout: %s)...\n", scanner.Timeout)
		}
		sources = append(sources, badge.MDNSSource{Scanner: scanner})
	}
	return append(sources, badge.SerialSource{})
}

func newDevicesAddCmd(a *app) *cobra.Command {
	var (
		p          config.Profile
		timeout    time.Duration
		setDefault bool
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add or replace a device profile",
		Example: `  ledbadge devices add desk --sink serial --address /dev/ttyUSB0 --default
  ledbadge devices add window --sink websocket --address ws://192.168.1.40:8080/bridge --token "$TOKEN"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			profile := p
			profile.Timeout = config.Duration(timeout)
			if err := a.registry.SetDevice(name, &profile); err != nil {
				return err
			}
			if setDefault {
				a.registry.SetDefault(name)
			}
			if err := a.registry.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved device %q\n", name)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.Sink, "sink", "serial", "Sink kind: "+strings.Join(config.SinkKinds, ", "))
	f.StringVar(&p.Address, "address", "", "Serial device path or ws:// bridge URL")
	f.IntVar(&p.Baud, "baud", 0, "Serial baud rate (default 115200)")
	f.IntVar(&p.MaxTextLength, "max-text-length", 0, "Characters per message (default: the display's own limit)")
	f.StringVar(&p.Charset, "charset", "", "Display charset: latin1, ascii, or empty for any")
	f.DurationVar(&timeout, "dispatch-timeout", 0, "Give up waiting for this display after this long")
	f.StringVar(&p.AuthToken, "token", "", "Bearer token for a bridge that requires one")
	f.StringVar(&p.Description, "description", "", "Free-form note")
	f.BoolVar(&setDefault, "default", false, "Make this the default device")
	return cmd
}

func newDevicesRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a device profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.registry.RemoveDevice(args[0]) {
				return fmt.Errorf("unknown device %q", args[0])
			}
			if err := a.registry.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed device %q\n", args[0])
			return nil
		},
	}
}

func newDevicesDefaultCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "default NAME",
		Short: "Set the device used when --device is not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.registry.GetDevice(args[0]) == nil {
				return fmt.Errorf("unknown device %q (configured: %v)", args[0], a.registry.DeviceNames())
			}
			a.registry.SetDefault(args[0])
			if err := a.registry.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default device is now %q\n", args[0])
			return nil
		},
	}
}
