package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/server"
	"github.com/muurk/ledbadge/internal/sink"
	"github.com/muurk/ledbadge/internal/ui"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen     string
		certPath   string
		keyPath    string
		authSecret string
		advertise  bool
		instance   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the display over HTTP and WebSocket",
		Long: `Start an HTTP server in front of the selected display.

Clients send messages with POST /api/set_text and /api/set_messages, or
connect a WebSocket sink to /bridge. Requests are validated against the
display's limits and written one at a time.

With --advertise the server announces itself over mDNS so that
'ledbadge devices' on other machines can find it.`,
		Example: `  # Share the default device on port 8080
  ledbadge serve

  # Require tokens, use TLS and announce the bridge
  ledbadge serve --device desk --listen :8443 --cert cert.pem --key key.pem \
    --auth-secret "$SECRET" --advertise`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (certPath == "") != (keyPath == "") {
				return fmt.Errorf("both --cert and --key must be provided together")
			}

			addr := firstNonEmpty(listen, a.env.ListenAddr)
			host, portStr, err := net.SplitHostPort(addr)
			if err != nil {
				return fmt.Errorf("invalid listen address %q: %w", addr, err)
			}
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return fmt.Errorf("invalid listen port %q", portStr)
			}

			s, err := a.open(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			// HTTP handlers run concurrently; the display takes one write at a time
			serialized := sink.Serialize(s.sink)
			svc := badge.NewService(serialized, badge.Options{
				MaxTextLength: a.maxText,
				Timeout:       s.timeout,
			})

			secret := firstNonEmpty(authSecret, a.env.AuthSecret)
			srv, err := server.New(&server.Config{
				Host:       host,
				Port:       port,
				CertPath:   certPath,
				KeyPath:    keyPath,
				AuthSecret: secret,
				Advertise:  advertise,
				Instance:   instance,
			}, svc)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			auth := "none"
			if secret != "" {
				auth = "bearer token"
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.NewHeader("Display bridge", "ledbadge serve",
				ui.Detail{Key: "Device", Value: s.name},
				ui.Detail{Key: "Listen", Value: addr},
				ui.Detail{Key: "TLS", Value: strconv.FormatBool(certPath != "")},
				ui.Detail{Key: "Auth", Value: auth},
				ui.Detail{Key: "mDNS", Value: strconv.FormatBool(advertise)},
			).Render())

			if secret == "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderWarning("No authentication",
					ui.Detail{Key: "Risk", Value: "Anyone who can reach " + addr + " can write to " + s.name},
					ui.Detail{Key: "Fix", Value: "Set --auth-secret or LEDBADGE_AUTH_SECRET"},
				))
			}

			return srv.Start()
		},
	}

	f := cmd.Flags()
	f.StringVar(&listen, "listen", "", "Listen address (default LEDBADGE_LISTEN_ADDR or :8080)")
	f.StringVar(&certPath, "cert", "", "TLS certificate file")
	f.StringVar(&keyPath, "key", "", "TLS private key file")
	f.StringVar(&authSecret, "auth-secret", "", "Require HS256 bearer tokens signed with this secret (default LEDBADGE_AUTH_SECRET)")
	f.BoolVar(&advertise, "advertise", false, "Announce the bridge over mDNS")
	f.StringVar(&instance, "instance", "", "mDNS instance name (default: hostname)")
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject    string
		ttl        time.Duration
		authSecret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a server started with --auth-secret",
		Example: `  LEDBADGE_AUTH_SECRET=s3cret ledbadge token --subject kiosk --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := server.IssueToken(firstNonEmpty(authSecret, a.env.AuthSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "ledbadge", "Token subject, shown in server logs")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (0 = no expiry, negative is rejected)")
	cmd.Flags().StringVar(&authSecret, "auth-secret", "", "Signing secret (default LEDBADGE_AUTH_SECRET)")
	return cmd
}
