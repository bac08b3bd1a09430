package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/logging"
	"github.com/muurk/ledbadge/internal/protocol"
)

// Serial defaults
const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 2 * time.Second

	// BadgeTextLimit is the longest message the badge's firmware buffers.
	BadgeTextLimit = 255

	// maxStaleAcks bounds how many acks for earlier frames are skipped
	// before the reply is treated as a protocol error.
	maxStaleAcks = 3
)

// Serial writes program frames to a badge over a serial port and waits
// for the matching ack frame.
type Serial struct {
	name   string
	limits Limits

	mu     sync.Mutex
	port   io.ReadWriteCloser
	closed bool
}

// NewSerialWith wraps an already-open port.
// Tests use it with an in-memory pipe.
func NewSerialWith(port io.ReadWriteCloser, name string, limits Limits) *Serial {
	return &Serial{name: name, limits: limits, port: port}
}

// Write sends cmd as a one-message program.
func (s *Serial) Write(ctx context.Context, cmd display.Command) (Ack, error) {
	return s.WriteProgram(ctx, display.ProgramOf(cmd))
}

// WriteProgram sends prog in one frame and waits for the device's ack.
func (s *Serial) WriteProgram(ctx context.Context, prog display.Program) (Ack, error) {
	id := protocol.GenerateMessageID()
	frame, err := protocol.BuildProgramFrame(id, prog, s.limits.Charset)
	if err != nil {
		return Ack{}, NewProtocolError(s.name, "failed to encode program", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Ack{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	logging.LogRawBytes("serial TX", frame)
	if _, err := s.port.Write(frame); err != nil {
		return Ack{}, NewDeviceError(s.name, "failed to write frame", err)
	}

	ack, err := s.readAck(id)
	if err != nil {
		return Ack{}, err
	}

	if !ack.OK() {
		return Ack{}, NewRejectedError(s.name, ack.Status.String(), ack.Detail)
	}

	logging.Debug("Badge acknowledged program",
		zap.String("device", s.name),
		zap.Uint32("message_id", id),
		zap.Int("messages", prog.Len()),
	)

	return Ack{
		Device:   s.name,
		Status:   ack.Status.String(),
		Messages: prog.Len(),
		Bytes:    len(frame),
		At:       time.Now(),
	}, nil
}

// readAck reads frames until the ack for id arrives.
func (s *Serial) readAck(id uint32) (*protocol.Ack, error) {
	for stale := 0; ; stale++ {
		frame, err := protocol.ReadFrame(s.port)
		if err != nil {
			if isTimeout(err) {
				return nil, &Error{Type: ErrTypeTimeout, Message: "no ack from badge", Device: s.name, Err: err, Retryable: true}
			}
			return nil, NewProtocolError(s.name, "invalid ack frame", err)
		}
		logging.LogRawBytes("serial RX", frame.Raw)

		ack, err := protocol.ParseAck(frame)
		if err != nil {
			return nil, NewProtocolError(s.name, "unexpected frame", err)
		}

		if ack.MessageID == id {
			return ack, nil
		}
		if stale >= maxStaleAcks {
			return nil, NewProtocolError(s.name,
				fmt.Sprintf("ack for message %d never arrived (last saw %d)", id, ack.MessageID), nil)
		}
		logging.Warn("Skipping stale ack",
			zap.Uint32("want", id),
			zap.Uint32("got", ack.MessageID),
		)
	}
}

// Limits returns the badge limits this port was opened with.
func (s *Serial) Limits() Limits { return s.limits }

// Close closes the port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}

// String returns the port name.
func (s *Serial) String() string { return s.name }

// isTimeout reports whether a read ended because the port's read timeout
// expired. pkg/term reports an expired timeout as a zero-byte read, which
// surfaces as io.EOF or io.ErrUnexpectedEOF through io.ReadFull.
func isTimeout(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
