package sink

import (
	"context"
	"time"

	"github.com/muurk/ledbadge/internal/display"
)

// Sink delivers validated commands to a display.
type Sink interface {
	// Write performs exactly one delivery of cmd.
	Write(ctx context.Context, cmd display.Command) (Ack, error)
	// Close releases the underlying device.
	Close() error
}

// ProgramSink is a Sink that accepts several messages in one write.
type ProgramSink interface {
	Sink
	WriteProgram(ctx context.Context, prog display.Program) (Ack, error)
}

// Limits describes what the display can render.
type Limits struct {
	MaxTextLength int             // Zero means unbounded
	Charset       display.Charset // Nil means any valid UTF-8
}

// Limiter is implemented by sinks that know their display's limits.
type Limiter interface {
	Limits() Limits
}

// Ack is a sink's confirmation that a write was delivered.
type Ack struct {
	Device   string    // Device name or address
	Status   string    // Device-reported status ("ok", "displayed", ...)
	Messages int       // Number of messages delivered
	Bytes    int       // Bytes written to the wire, if known
	At       time.Time // When the device confirmed
}

// LimitsOf returns s's limits, or zero Limits when s does not declare any.
func LimitsOf(s Sink) Limits {
	if l, ok := s.(Limiter); ok {
		return l.Limits()
	}
	return Limits{}
}

// Validator builds a Validator that enforces l, tightened by maxText when
// the caller asks for a smaller limit.
func (l Limits) Validator(maxText int) *display.Validator {
	limit := l.MaxTextLength
	if maxText > 0 && (limit == 0 || maxText < limit) {
		limit = maxText
	}
	return &display.Validator{MaxTextLength: limit, Charset: l.Charset}
}
