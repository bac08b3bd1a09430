package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/config"
	"github.com/muurk/ledbadge/internal/library"
	"github.com/muurk/ledbadge/internal/logging"
	"github.com/muurk/ledbadge/internal/sink"
	"github.com/muurk/ledbadge/internal/ui"
)

// shownError marks a failure that was already rendered for the user
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// session is an open display with the service bound to it
type session struct {
	name    string
	profile *config.Profile
	sink    sink.Sink
	service *badge.Service
	timeout time.Duration
}

func (s *session) Close() error {
	return s.sink.Close()
}

// deviceName returns the --device flag, falling back to LEDBADGE_DEVICE
func (a *app) deviceName() string {
	return firstNonEmpty(a.device, a.env.Device)
}

// target resolves the selected device. With --dry-run it becomes a
// terminal preview that keeps the device's limits.
func (a *app) target(out io.Writer) (sink.Target, *config.Profile, error) {
	return a.targetFor(a.deviceName(), out)
}

func (a *app) targetFor(device string, out io.Writer) (sink.Target, *config.Profile, error) {
	target, profile, err := badge.ResolveTarget(a.registry, device)
	if err != nil {
		return sink.Target{}, nil, err
	}

	if a.dryRun && target.Kind != sink.KindConsole {
		if target.Kind == sink.KindSerial {
			if target.MaxTextLength == 0 {
				target.MaxTextLength = sink.BadgeTextLimit
			}
			if target.Charset == "" {
				target.Charset = "latin1"
			}
		}
		target.Name += " (dry run)"
		target.Kind = sink.KindConsole
	}
	target.Output = out
	return target, profile, nil
}

// open connects to the selected device
func (a *app) open(ctx context.Context, out io.Writer) (*session, error) {
	return a.openDevice(ctx, a.deviceName(), out)
}

// openDevice connects to a profile name, serial port or bridge URL
func (a *app) openDevice(ctx context.Context, device string, out io.Writer) (*session, error) {
	target, profile, err := a.targetFor(device, out)
	if err != nil {
		return nil, err
	}

	timeout := a.timeout
	if timeout == 0 {
		timeout = config.ResolveTimeout(a.env, profile)
	}
	if target.Timeout == 0 {
		target.Timeout = timeout
	}

	s, err := sink.Open(ctx, target)
	if err != nil {
		return nil, err
	}

	logging.Debug("Opened display",
		zap.String("device", target.Name),
		zap.String("sink", string(target.Kind)),
		zap.Duration("timeout", timeout),
	)

	return &session{
		name:    target.Name,
		profile: profile,
		sink:    s,
		service: badge.NewService(s, badge.Options{MaxTextLength: a.maxText, Timeout: timeout}),
		timeout: timeout,
	}, nil
}

// markUsed records the profile's last use. Failures only get logged.
func (a *app) markUsed(s *session) {
	if s.profile == nil || a.dryRun {
		return
	}
	a.registry.MarkUsed(s.name)
	if err := a.registry.Save(); err != nil {
		logging.Warn("Failed to save config", zap.Error(err))
	}
}

// openLibrary opens the saved-message database
func (a *app) openLibrary() (*library.Store, error) {
	path, err := a.registry.ResolveLibraryPath(a.env)
	if err != nil {
		return nil, err
	}
	return library.Open(path)
}

// report prints the result of a display operation
func (a *app) report(out io.Writer, ack string, err error) error {
	if err != nil {
		if a.plain || !ui.IsTerminal() {
			return err
		}
		fmt.Fprintln(out, ui.RenderError(err))
		return &shownError{err: err}
	}

	if a.plain || !ui.IsTerminal() {
		fmt.Fprintln(out, ack)
		return nil
	}
	fmt.Fprintln(out, ui.RenderSuccess(ack))
	return nil
}
