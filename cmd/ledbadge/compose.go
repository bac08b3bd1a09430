package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/compose"
	"github.com/muurk/ledbadge/internal/ui"
)

func newComposeCmd(a *app) *cobra.Command {
	var (
		noScan      bool
		scanTimeout int
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose and send messages interactively",
		Long: `Open a full-screen editor to pick a display, type a message, choose
its mode, speed and effects, and send it.

The message is checked against the display's limits as you type; enter
only sends a valid message. Without --device, displays are listed from
the config file, mDNS and serial ports first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ui.IsTerminal() {
				return fmt.Errorf("compose needs an interactive terminal; use set-text instead")
			}

			opts := compose.Options{
				List: func(ctx context.Context) ([]badge.Device, error) {
					return badge.ListDevices(ctx, a.deviceSources(!noScan, scanTimeout, nil)...)
				},
				Open: func(ctx context.Context, d badge.Device) (*badge.Service, io.Closer, error) {
					s, err := a.openDevice(ctx, deviceRef(d), io.Discard)
					if err != nil {
						return nil, nil, err
					}
					a.markUsed(s)
					return s.service, s, nil
				},
			}

			if name := a.deviceName(); name != "" {
				target, _, err := a.target(io.Discard)
				if err != nil {
					return err
				}
				opts.Device = &badge.Device{
					Name:    name,
					Kind:    target.Kind,
					Address: target.Address,
					Source:  "config",
				}
			}

			_, err := tea.NewProgram(compose.NewAppModel(opts), tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&noScan, "no-scan", false, "Skip mDNS discovery")
	cmd.Flags().IntVar(&scanTimeout, "scan-timeout", 0, "mDNS scan timeout in seconds (default: discover_timeout)")
	return cmd
}

// deviceRef is what ResolveTarget needs to reopen d: the profile name for
// configured devices, the address for discovered ones
func deviceRef(d badge.Device) string {
	if d.Source == "config" || d.Address == "" {
		return d.Name
	}
	return d.Address
}
