package sink

import (
	"context"

	"github.com/muurk/ledbadge/internal/display"
)

// serialized guards a sink with a one-slot semaphore.
// Unlike a mutex, waiting for the slot respects ctx.
type serialized struct {
	inner Sink
	sem   chan struct{}
}

// serializedProgram additionally forwards WriteProgram.
type serializedProgram struct {
	*serialized
	program ProgramSink
}

// Serialize returns a Sink that allows one write at a time to s.
// Optional capabilities of s (Limiter, ProgramSink) are preserved.
func Serialize(s Sink) Sink {
	base := &serialized{inner: s, sem: make(chan struct{}, 1)}
	if ps, ok := s.(ProgramSink); ok {
		return &serializedProgram{serialized: base, program: ps}
	}
	return base
}

func (s *serialized) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *serialized) release() { <-s.sem }

func (s *serialized) Write(ctx context.Context, cmd display.Command) (Ack, error) {
	if err := s.acquire(ctx); err != nil {
		return Ack{}, err
	}
	defer s.release()
	return s.inner.Write(ctx, cmd)
}

func (s *serialized) Close() error {
	return s.inner.Close()
}

func (s *serialized) Limits() Limits {
	return LimitsOf(s.inner)
}

func (s *serializedProgram) WriteProgram(ctx context.Context, prog display.Program) (Ack, error) {
	if err := s.acquire(ctx); err != nil {
		return Ack{}, err
	}
	defer s.release()
	return s.program.WriteProgram(ctx, prog)
}
