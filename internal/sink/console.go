package sink

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ledbadge/internal/display"
)

var (
	badgeColor = lipgloss.Color("#FF3B30") // LED red
	badgeMuted = lipgloss.Color("#626262")

	consoleLabelStyle = lipgloss.NewStyle().Foreground(badgeMuted)
	consoleTextStyle  = lipgloss.NewStyle().Foreground(badgeColor).Bold(true).Padding(0, 1)
)

// Console renders each message as a badge preview on a terminal.
// It is the sink for trying out messages without hardware attached.
type Console struct {
	Name  string
	Limit Limits

	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewConsole creates a Console sink writing to w.
func NewConsole(w io.Writer, limits Limits) *Console {
	return &Console{Name: "console", Limit: limits, w: w}
}

// Write renders cmd.
func (c *Console) Write(ctx context.Context, cmd display.Command) (Ack, error) {
	return c.WriteProgram(ctx, display.ProgramOf(cmd))
}

// WriteProgram renders every message of prog, one preview per slot.
func (c *Console) WriteProgram(ctx context.Context, prog display.Program) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	var b strings.Builder
	for i, cmd := range prog.Commands() {
		b.WriteString(renderPreview(i+1, cmd))
		b.WriteString("\n")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Ack{}, ErrClosed
	}
	n, err := io.WriteString(c.w, b.String())
	if err != nil {
		return Ack{}, &Error{Type: ErrTypeDevice, Message: "failed to write preview", Device: c.Name, Err: err}
	}
	return Ack{Device: c.Name, Status: "displayed", Messages: prog.Len(), Bytes: n, At: time.Now()}, nil
}

// Limits returns the configured limits.
func (c *Console) Limits() Limits { return c.Limit }

// Close stops further writes. The writer itself is left open.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func renderPreview(slot int, cmd display.Command) string {
	style := consoleTextStyle
	fx := cmd.Effects()
	if fx.Has(display.EffectInverted) {
		style = style.Reverse(true)
	}
	if fx.Has(display.EffectFlashing) {
		style = style.Blink(true)
	}
	if fx.Has(display.EffectBorder) {
		style = style.Border(lipgloss.RoundedBorder()).BorderForeground(badgeColor)
	}

	text := cmd.Text()
	if text == "" {
		text = " "
	}

	label := consoleLabelStyle.Render(fmt.Sprintf("[%d] %s, speed %d", slot, cmd.Mode(), cmd.Speed()))
	return lipgloss.JoinVertical(lipgloss.Left, label, style.Render(text))
}
