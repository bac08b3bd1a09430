package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/library"
	"github.com/muurk/ledbadge/internal/ui"
)

func newLibraryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage saved messages",
		Long: `Save messages under a name and play them back later.

Saved messages live in a SQLite database next to the config file
(override with library_path or LEDBADGE_LIBRARY). They are validated when
saved and again when played, against the limits of the target display.`,
	}
	cmd.AddCommand(
		newLibrarySaveCmd(a),
		newLibraryListCmd(a),
		newLibraryShowCmd(a),
		newLibraryDeleteCmd(a),
		newLibraryPlayCmd(a),
	)
	return cmd
}

func newLibrarySaveCmd(a *app) *cobra.Command {
	var flags messageFlags

	cmd := &cobra.Command{
		Use:     "save NAME TEXT",
		Short:   "Save a message, replacing any with the same name",
		Example: `  ledbadge library save welcome "WELCOME TO THE STAND" --speed 3 --mode left -e border`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			v := display.NewValidator()
			v.MaxTextLength = a.maxText
			msg, err := store.Save(cmd.Context(), v, args[0], flags.request(args[1]))
			if err != nil {
				return a.report(cmd.OutOrStdout(), "", err)
			}
			return a.report(cmd.OutOrStdout(), fmt.Sprintf("Saved %q: %s", msg.Name, describe(msg)), nil)
		},
	}
	flags.register(cmd)
	return cmd
}

func newLibraryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved messages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			msgs, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			table := ui.NewTable("NAME", "TEXT", "MODE", "SPEED", "EFFECTS", "PLAYS")
			for _, m := range msgs {
				table.AddRow(m.Name, truncate(m.Text, 32), m.Mode, strconv.Itoa(m.Speed),
					strings.Join(m.Effects, ","), strconv.Itoa(m.PlayCount))
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
}

func newLibraryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show one saved message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			m, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			lastPlayed := "never"
			if !m.LastPlayedAt.IsZero() {
				lastPlayed = m.LastPlayedAt.Local().Format("2006-01-02 15:04")
			}
			effects := strings.Join(m.Effects, ", ")
			if effects == "" {
				effects = "none"
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.NewSuccessResult(m.Name,
				ui.Detail{Key: "Text", Value: m.Text},
				ui.Detail{Key: "Mode", Value: m.Mode},
				ui.Detail{Key: "Speed", Value: strconv.Itoa(m.Speed)},
				ui.Detail{Key: "Effects", Value: effects},
				ui.Detail{Key: "Plays", Value: strconv.Itoa(m.PlayCount)},
				ui.Detail{Key: "Last played", Value: lastPlayed},
				ui.Detail{Key: "Updated", Value: m.UpdatedAt.Local().Format("2006-01-02 15:04")},
			).Render())
			return nil
		},
	}
}

func newLibraryDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a saved message",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			name := args[0]
			if _, err := store.Get(cmd.Context(), name); err != nil {
				return err
			}
			if !yes && !ui.Confirm(os.Stdin, cmd.OutOrStdout(), "DELETE SAVED MESSAGE",
				[]string{fmt.Sprintf("%q will be removed from the library", name)}, "delete") {
				return nil
			}

			if err := store.Delete(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func newLibraryPlayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play NAME...",
		Short: "Show saved messages on the display",
		Long: fmt.Sprintf(`Show one saved message, or up to %d as one upload.`, display.MaxProgramLength),
		Example: `  ledbadge library play welcome
  ledbadge library play open sale --device window`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			s, err := a.open(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			ack, err := s.service.PlaySaved(cmd.Context(), store, args...)
			if errors.Is(err, library.ErrNotFound) {
				return err
			}
			if err == nil {
				a.markUsed(s)
			}
			return a.report(cmd.OutOrStdout(), ack, err)
		},
	}
}

func describe(m library.Message) string {
	s := fmt.Sprintf("%q (%s, speed %d)", m.Text, m.Mode, m.Speed)
	if len(m.Effects) > 0 {
		s += " +" + strings.Join(m.Effects, "+")
	}
	return s
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
