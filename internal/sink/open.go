package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/muurk/ledbadge/internal/display"
)

// Kind selects a sink implementation
type Kind string

// Sink kinds
const (
	KindSerial    Kind = "serial"
	KindWebSocket Kind = "websocket"
	KindConsole   Kind = "console"
	KindMemory    Kind = "memory"
)

// Kinds lists the accepted sink kinds
func Kinds() []Kind {
	return []Kind{KindSerial, KindWebSocket, KindConsole, KindMemory}
}

// Target describes a display to open
type Target struct {
	Name          string
	Kind          Kind
	Address       string // Serial device path or ws:// URL
	Baud          int
	MaxTextLength int
	Charset       string
	AuthToken     string
	Timeout       time.Duration

	// Output receives console previews. Defaults to stdout.
	Output io.Writer
}

// Limits resolves the target's declared limits.
func (t Target) Limits() (Limits, error) {
	cs, err := display.CharsetByName(t.Charset)
	if err != nil {
		return Limits{}, err
	}
	return Limits{MaxTextLength: t.MaxTextLength, Charset: cs}, nil
}

// Open builds the sink described by t.
// Serial badges default to the badge's text limit and Latin-1 fonts when
// the target does not override them.
func Open(ctx context.Context, t Target) (Sink, error) {
	limits, err := t.Limits()
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindSerial:
		if t.Address == "" {
			return nil, fmt.Errorf("serial target %q has no device path", t.Name)
		}
		if limits.MaxTextLength == 0 {
			limits.MaxTextLength = BadgeTextLimit
		}
		if limits.Charset == nil {
			limits.Charset = display.Latin1
		}
		return OpenSerial(t.Address, t.Baud, limits)

	case KindWebSocket:
		if t.Address == "" {
			return nil, fmt.Errorf("websocket target %q has no URL", t.Name)
		}
		return DialWebSocket(ctx, t.Address, WebSocketOptions{
			Limits:    limits,
			AuthToken: t.AuthToken,
			Timeout:   t.Timeout,
		})

	case KindConsole, "":
		out := t.Output
		if out == nil {
			out = os.Stdout
		}
		c := NewConsole(out, limits)
		if t.Name != "" {
			c.Name = t.Name
		}
		return c, nil

	case KindMemory:
		m := NewMemory(t.Name)
		m.Limit = limits
		return m, nil

	default:
		return nil, fmt.Errorf("unknown sink kind %q (want one of %v)", t.Kind, Kinds())
	}
}
