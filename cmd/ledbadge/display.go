package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/ledbadge/internal/display"
)

// messageFlags are shared by commands that build one message
type messageFlags struct {
	speed   float64
	mode    string
	effects []string
}

func (f *messageFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.speed, "speed", "s", 0, "Scroll speed, a whole number from 0 (slow) to 7 (fast)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "Animation: "+strings.Join(display.ModeNames(), ", "))
	cmd.Flags().StringSliceVarP(&f.effects, "effect", "e", nil, "Effect to add, repeatable: "+strings.Join(display.EffectNames(), ", "))
	_ = cmd.MarkFlagRequired("speed")
	_ = cmd.MarkFlagRequired("mode")
}

func (f *messageFlags) request(text string) display.Request {
	return display.NewRequest(text, f.speed, f.mode, f.effects...)
}

func newSetTextCmd(a *app) *cobra.Command {
	var flags messageFlags

	cmd := &cobra.Command{
		Use:   "set-text TEXT",
		Short: "Show text on the display",
		Long: `Validate TEXT, SPEED and MODE and show the message on the display.

Nothing is sent unless all three are valid. There are no defaults for
speed and mode; both must be given.`,
		Example: `  # Scroll a greeting from the right
  ledbadge set-text "HELLO" --speed 4 --mode left

  # Flashing text with a border on a named device
  ledbadge set-text "ON AIR" -s 0 -m center -e flashing -e border --device studio

  # Check a message against the badge's limits without sending it
  ledbadge set-text "Grüße" -s 3 -m laser --device /dev/ttyUSB0 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			ack, err := s.service.Submit(cmd.Context(), flags.request(args[0]))
			if err == nil {
				a.markUsed(s)
			}
			return a.report(cmd.OutOrStdout(), ack, err)
		},
	}
	flags.register(cmd)
	return cmd
}

// messagesFile is the YAML layout accepted by set-messages --file
type messagesFile struct {
	Messages []display.Request `yaml:"messages"`
}

func newSetMessagesCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set-messages [MODE[+EFFECT...]:SPEED:TEXT]...",
		Short: "Fill the display's message slots in one go",
		Long: fmt.Sprintf(`Send up to %d messages to the display as one upload. The badge cycles
through them in order.

Messages are given as MODE:SPEED:TEXT arguments, or in a YAML file.
Effects follow the mode, joined with '+' (left+flashing+border:3:OPEN).


  messages:
    - text: OPEN
      speed: 3
      mode: left
    - text: SALE
      speed: 6
      mode: laser
      effects: [flashing, border]

Every message is validated first; if any is invalid nothing is sent.`, display.MaxProgramLength),
		Example: `  ledbadge set-messages left:3:OPEN "laser+flashing:6:50% OFF"
  ledbadge set-messages --file shopfront.yaml --device window`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := collectMessages(file, args)
			if err != nil {
				return err
			}

			s, err := a.open(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			ack, err := s.service.SetMessages(cmd.Context(), reqs)
			if err == nil {
				a.markUsed(s)
			}
			return a.report(cmd.OutOrStdout(), ack, err)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a messages list")
	return cmd
}

// collectMessages reads the messages file, if any, then appends the
// MODE[+EFFECT...]:SPEED:TEXT arguments
func collectMessages(file string, args []string) ([]display.Request, error) {
	var reqs []display.Request

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read messages file: %w", err)
		}
		var mf messagesFile
		if err := yaml.Unmarshal(data, &mf); err != nil {
			return nil, fmt.Errorf("failed to parse messages file: %w", err)
		}
		reqs = append(reqs, mf.Messages...)
	}

	for _, arg := range args {
		req, err := parseMessageArg(arg)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// parseMessageArg splits MODE[+EFFECT...]:SPEED:TEXT. The text may itself
// contain colons.
func parseMessageArg(arg string) (display.Request, error) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) != 3 {
		return display.Request{}, fmt.Errorf("message %q is not MODE:SPEED:TEXT", arg)
	}
	speed, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return display.Request{}, fmt.Errorf("message %q: speed %q is not a number", arg, parts[1])
	}
	mode, effects, _ := strings.Cut(parts[0], "+")
	var fx []string
	if effects != "" {
		fx = strings.Split(effects, "+")
	}
	return display.NewRequest(parts[2], speed, mode, fx...), nil
}
