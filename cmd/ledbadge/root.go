package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/ledbadge/internal/config"
	"github.com/muurk/ledbadge/internal/logging"
	"github.com/muurk/ledbadge/internal/version"
)

// app holds global flags and the state loaded before every command
type app struct {
	configPath string
	device     string
	logLevel   string
	timeout    time.Duration
	maxText    int
	dryRun     bool
	plain      bool

	env      config.Env
	registry *config.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ledbadge",
		Short: "LED name badge and scrolling display utility",
		Long: `Send text to LED name badges and scrolling character displays.

Every message is checked before it reaches the display: the mode must be
one of left, right, up, down, center, fast, drop, curtain or laser, the
speed a whole number from 0 to 7, and the text short enough and made of
characters the display can show.

Displays are configured as device profiles in the config file, or named
directly by serial port (/dev/ttyUSB0) or bridge URL (ws://host:8080/bridge).
With nothing configured, messages are previewed in the terminal.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/ledbadge/config.yaml, or LEDBADGE_CONFIG)")
	flags.StringVarP(&a.device, "device", "d", "", "Device profile, serial port or ws:// URL (default: default_device, or LEDBADGE_DEVICE)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	flags.DurationVar(&a.timeout, "timeout", 0, "Give up waiting for the display after this long (e.g. 3s)")
	flags.IntVar(&a.maxText, "max-text", 0, "Maximum characters per message, tightening the display's own limit")
	flags.BoolVar(&a.dryRun, "dry-run", false, "Validate and preview in the terminal without writing to the display")
	flags.BoolVar(&a.plain, "plain", false, "Print plain text instead of styled boxes")

	rootCmd.AddCommand(
		newSetTextCmd(a),
		newSetMessagesCmd(a),
		newComposeCmd(a),
		newLibraryCmd(a),
		newDevicesCmd(a),
		newServeCmd(a),
		newTokenCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup reads the environment, starts logging and loads the registry
func (a *app) setup() error {
	e, err := config.LoadEnv()
	if err != nil {
		return err
	}
	a.env = e

	if err := logging.InitializeWithOptions(logging.Options{
		Level: firstNonEmpty(a.logLevel, e.LogLevel),
		File:  e.LogFile,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	path := firstNonEmpty(a.configPath, e.ConfigPath)
	if path == "" {
		path, err = config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}
	reg, err := config.LoadRegistryFrom(path)
	if err != nil {
		return err
	}
	a.registry = reg
	return nil
}

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example config file",
		Long: `Write a config file with two example device profiles: a serial badge
named "desk" and a terminal "preview", which becomes the default device.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.registry.Path()
			if err != nil {
				return err
			}
			if len(a.registry.Devices) > 0 && !force {
				return fmt.Errorf("%s already has devices configured (use --force to overwrite)", path)
			}
			if _, err := config.CreateDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing device profiles")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ledbadge %s\n%s\n", version.Full(), version.Platform())
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
