package sink

import (
	"context"
	"sync"
	"time"

	"github.com/muurk/ledbadge/internal/display"
)

// Memory is an in-process sink that records every write.
// It backs tests and the --dry-run flag.
type Memory struct {
	Name  string
	Limit Limits

	// Delay simulates a slow device. The write is recorded before the
	// delay, so a caller that gives up still leaves a record behind.
	Delay time.Duration
	// Err, when set, is returned from every write after it is recorded.
	Err error

	mu       sync.Mutex
	programs []display.Program
	closed   bool
}

// NewMemory creates a Memory sink.
func NewMemory(name string) *Memory {
	return &Memory{Name: name}
}

// Write records cmd as a one-message program.
func (m *Memory) Write(ctx context.Context, cmd display.Command) (Ack, error) {
	return m.WriteProgram(ctx, display.ProgramOf(cmd))
}

// WriteProgram records prog.
func (m *Memory) WriteProgram(ctx context.Context, prog display.Program) (Ack, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Ack{}, ErrClosed
	}
	m.programs = append(m.programs, prog)
	delay, failure := m.Delay, m.Err
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Ack{}, &Error{Type: ErrTypeTimeout, Message: "write abandoned", Device: m.name(), Err: ctx.Err(), Retryable: true}
		}
	}
	if failure != nil {
		return Ack{}, failure
	}

	return Ack{Device: m.name(), Status: "ok", Messages: prog.Len(), At: time.Now()}, nil
}

// Limits returns the configured limits.
func (m *Memory) Limits() Limits { return m.Limit }

// Close marks the sink closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Writes returns the number of writes received.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.programs)
}

// Programs returns every program received, oldest first.
func (m *Memory) Programs() []display.Program {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]display.Program, len(m.programs))
	copy(out, m.programs)
	return out
}

// Commands flattens every received program into its commands.
func (m *Memory) Commands() []display.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []display.Command
	for _, p := range m.programs {
		out = append(out, p.Commands()...)
	}
	return out
}

// Last returns the most recent command, if any.
func (m *Memory) Last() (display.Command, bool) {
	cmds := m.Commands()
	if len(cmds) == 0 {
		return display.Command{}, false
	}
	return cmds[len(cmds)-1], true
}

func (m *Memory) name() string {
	if m.Name == "" {
		return "memory"
	}
	return m.Name
}
