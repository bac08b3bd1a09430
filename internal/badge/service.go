package badge

import (
	"context"
	"fmt"
	"time"

	"github.com/muurk/ledbadge/internal/dispatch"
	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/library"
	"github.com/muurk/ledbadge/internal/logging"
	"github.com/muurk/ledbadge/internal/sink"
	"go.uber.org/zap"
)

// Options configures a Service.
type Options struct {
	// MaxTextLength tightens the sink's own text limit. Zero keeps it.
	MaxTextLength int
	// Timeout bounds each dispatch. Zero means only the caller's context.
	Timeout time.Duration
}

// Service validates requests and dispatches them to one display.
type Service struct {
	validator  *display.Validator
	dispatcher *dispatch.Dispatcher
}

// NewService creates a Service writing to s.
func NewService(s sink.Sink, opts Options) *Service {
	d := dispatch.New(s)
	d.Timeout = opts.Timeout
	return &Service{
		validator:  sink.LimitsOf(s).Validator(opts.MaxTextLength),
		dispatcher: d,
	}
}

// Validator returns the validator requests are checked with.
func (s *Service) Validator() *display.Validator { return s.validator }

// SetText validates (text, speed, mode) and displays it.
// It returns a human-readable acknowledgement, or a *display.ValidationError
// or *dispatch.Error.
func (s *Service) SetText(ctx context.Context, text string, speed float64, mode string) (string, error) {
	cmd, err := s.validator.Validate(text, speed, mode)
	if err != nil {
		logging.LogValidation("set_text", err)
		return "", err
	}
	return s.dispatch(ctx, cmd)
}

// Submit validates a loosely-typed request (with optional effects) and
// displays it. Absent fields are reported as MissingField.
func (s *Service) Submit(ctx context.Context, req display.Request) (string, error) {
	cmd, err := s.validator.ValidateRequest(req)
	if err != nil {
		logging.LogValidation("set_text", err)
		return "", err
	}
	return s.dispatch(ctx, cmd)
}

// SetMessages validates every request and displays them together.
// Nothing is dispatched unless all of them are valid.
func (s *Service) SetMessages(ctx context.Context, reqs []display.Request) (string, error) {
	prog, err := s.validator.ValidateProgram(reqs)
	if err != nil {
		logging.LogValidation("set_messages", err)
		return "", err
	}
	ack, err := s.dispatcher.DispatchProgram(ctx, prog)
	if err != nil {
		return "", err
	}
	return ack.String(), nil
}

// MessageSource supplies saved messages by name. *library.Store
// implements it.
type MessageSource interface {
	Get(ctx context.Context, name string) (library.Message, error)
	MarkPlayed(ctx context.Context, names ...string) error
}

// PlaySaved loads the named messages and displays them as one program.
// Saved messages are validated again against this display's limits.
func (s *Service) PlaySaved(ctx context.Context, src MessageSource, names ...string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("no saved messages named")
	}

	reqs := make([]display.Request, 0, len(names))
	for _, name := range names {
		msg, err := src.Get(ctx, name)
		if err != nil {
			return "", err
		}
		reqs = append(reqs, msg.Request())
	}

	var (
		ack string
		err error
	)
	if len(reqs) == 1 {
		ack, err = s.Submit(ctx, reqs[0])
	} else {
		ack, err = s.SetMessages(ctx, reqs)
	}
	if err != nil {
		return "", err
	}

	if err := src.MarkPlayed(ctx, names...); err != nil {
		logging.Warn("Failed to update play count", zap.Strings("names", names), zap.Error(err))
	}
	return ack, nil
}

func (s *Service) dispatch(ctx context.Context, cmd display.Command) (string, error) {
	ack, err := s.dispatcher.Dispatch(ctx, cmd)
	if err != nil {
		return "", err
	}
	return ack.String(), nil
}
