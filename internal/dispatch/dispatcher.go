package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/logging"
	"github.com/muurk/ledbadge/internal/sink"
)

// Dispatcher hands validated commands to a sink.
type Dispatcher struct {
	sink sink.Sink

	// Timeout bounds a single dispatch. Zero means only the caller's
	// context deadline applies.
	Timeout time.Duration
}

// New creates a Dispatcher for s.
func New(s sink.Sink) *Dispatcher {
	if s == nil {
		panic("dispatch: nil sink")
	}
	return &Dispatcher{sink: s}
}

// Sink returns the underlying sink.
func (d *Dispatcher) Sink() sink.Sink { return d.sink }

// Acknowledgement is the result of a successful dispatch.
type Acknowledgement struct {
	Summary string        // What was displayed, e.g. `"HELLO" (left, speed 4)`
	Ack     sink.Ack      // The sink's own acknowledgement
	Latency time.Duration // Time spent waiting for the sink
}

// String returns the human-readable acknowledgement.
func (a Acknowledgement) String() string {
	if a.Ack.Device == "" {
		return "Displayed " + a.Summary
	}
	return fmt.Sprintf("Displayed %s on %s", a.Summary, a.Ack.Device)
}

// Dispatch writes cmd to the sink exactly once.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd display.Command) (Acknowledgement, error) {
	if !cmd.Valid() {
		panic("dispatch: Command was not produced by validation")
	}
	return d.run(ctx, "dispatch", summarize(cmd), cmd.String(), func(ctx context.Context) (sink.Ack, error) {
		return d.sink.Write(ctx, cmd)
	})
}

// DispatchProgram writes every command of prog to the sink in one payload.
func (d *Dispatcher) DispatchProgram(ctx context.Context, prog display.Program) (Acknowledgement, error) {
	if !prog.Valid() {
		panic("dispatch: Program was not produced by validation")
	}
	ps, ok := d.sink.(sink.ProgramSink)
	if !ok {
		return Acknowledgement{}, &Error{
			Kind: KindUnsupported,
			Op:   "dispatch program",
			Err:  fmt.Errorf("sink %T cannot display several messages", d.sink),
		}
	}

	summary := summarize(prog.At(0))
	if prog.Len() > 1 {
		summary = fmt.Sprintf("%d messages", prog.Len())
	}
	return d.run(ctx, "dispatch program", summary, prog.String(), func(ctx context.Context) (sink.Ack, error) {
		return ps.WriteProgram(ctx, prog)
	})
}

// run performs one write, giving up when ctx or d.Timeout expires.
// The write goroutine is left to finish on its own; its result is discarded.
func (d *Dispatcher) run(ctx context.Context, op, summary, desc string, write func(context.Context) (sink.Ack, error)) (Acknowledgement, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	type result struct {
		ack sink.Ack
		err error
	}
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		ack, err := write(ctx)
		done <- result{ack, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	latency := time.Since(start)

	if res.err != nil {
		err := d.classify(ctx, op, res.err)
		logging.LogDispatch(desc, res.ack.Device, latency, err)
		return Acknowledgement{}, err
	}

	logging.LogDispatch(desc, res.ack.Device, latency, nil)
	return Acknowledgement{Summary: summary, Ack: res.ack, Latency: latency}, nil
}

// classify maps a write error onto a dispatch error kind.
func (d *Dispatcher) classify(ctx context.Context, op string, err error) *Error {
	// A sink may report its own error once the deadline has passed, so
	// the context state decides as well as the error chain.
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Op: op, Timeout: d.Timeout, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return &Error{Kind: KindCanceled, Op: op, Err: err}
	default:
		return &Error{Kind: KindSinkFailure, Op: op, Err: err}
	}
}

func summarize(cmd display.Command) string {
	return fmt.Sprintf("%q (%s, speed %d)", cmd.Text(), cmd.Mode(), cmd.Speed())
}
