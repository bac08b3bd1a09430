package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/ledbadge/internal/dispatch"
	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/sink"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Detail is one key-value line in a result box
type Detail struct {
	Key   string
	Value string
}

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type            ResultType // Success, failure, or warning
	Title           string     // e.g., `Displayed "HELLO" (left, speed 4) on desk`
	Details         []Detail   // Rendered in order
	Error           error      // Error (for failure results)
	Troubleshooting []string   // Troubleshooting tips (for failure results)
	Width           int        // Terminal width
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Detail) *Result {
	return &Result{
		Type:    ResultSuccess,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Detail) *Result {
	return &Result{
		Type:    ResultWarning,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	switch r.Type {
	case ResultFailure:
		return r.renderFailure()
	case ResultWarning:
		return r.renderBox(WarningColor, fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, r.Title))
	default:
		return r.renderBox(SuccessColor, fmt.Sprintf("   %s  SUCCESS  ─  %s", SuccessMarker, r.Title))
	}
}

func (r *Result) width() int {
	if r.Width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return r.Width
}

// renderBox renders a title and the details in a double border
func (r *Result) renderBox(color lipgloss.Color, title string) string {
	lines := []string{"", lipgloss.NewStyle().Foreground(color).Bold(true).Render(title), ""}

	for _, d := range r.Details {
		keyStyled := ResultKeyStyle.Render(fmt.Sprintf("   %s:", d.Key))
		valueStyled := ResultValueStyle.Render(d.Value)
		lines = append(lines, keyStyled+" "+valueStyled)
	}
	lines = append(lines, "")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(r.width() - 2).
		Padding(0, DefaultPadding).
		Render(strings.Join(lines, "\n"))
}

// renderFailure renders a failure result box
func (r *Result) renderFailure() string {
	width := r.width()

	lines := []string{"", ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, r.Title)), ""}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}

	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width), "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width - 2).
		Padding(0, DefaultPadding).
		Render(strings.Join(lines, "\n"))
}

// renderTroubleshootingBox renders the inner troubleshooting box
func (r *Result) renderTroubleshootingBox(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	innerWidth := width - 12 // Indent within outer box
	if innerWidth < 40 {
		innerWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(innerWidth).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// FailureTitle names the class of a set_text failure
func FailureTitle(err error) string {
	if kind, ok := display.KindOf(err); ok {
		return "Invalid request (" + kind.String() + ")"
	}
	if kind, ok := dispatch.KindOf(err); ok {
		switch kind {
		case dispatch.KindTimeout:
			return "Display did not respond"
		case dispatch.KindCanceled:
			return "Cancelled"
		case dispatch.KindUnsupported:
			return "Not supported by this display"
		}
		return "Display error"
	}
	return "Error"
}

// Troubleshooting returns tips for a set_text failure
func Troubleshooting(err error) []string {
	var verr *display.ValidationError
	if errors.As(err, &verr) {
		switch verr.Kind {
		case display.ErrUnknownMode:
			return []string{"Modes: " + strings.Join(display.ModeNames(), ", ")}
		case display.ErrSpeedOutOfRange:
			return []string{fmt.Sprintf("Speed must be a whole number from %d to %d", display.MinSpeed, display.MaxSpeed)}
		case display.ErrTextTooLong:
			return []string{"Shorten the text or split it with set-messages"}
		case display.ErrUnsupportedCharacter:
			return []string{"This display only shows " + verr.Charset + " characters"}
		case display.ErrUnknownEffect:
			return []string{"Effects: " + strings.Join(display.EffectNames(), ", ")}
		case display.ErrProgramTooLong, display.ErrEmptyProgram:
			return []string{fmt.Sprintf("Send between 1 and %d messages", display.MaxProgramLength)}
		}
		return nil
	}

	if kind, ok := dispatch.KindOf(err); ok && kind == dispatch.KindUnsupported {
		return []string{"Send one message at a time with set-text"}
	}

	var serr *sink.Error
	if !errors.As(err, &serr) {
		if dispatch.IsTimeout(err) {
			return []string{
				"Check that the display is powered on and connected",
				"Try increasing the timeout (--timeout or LEDBADGE_TIMEOUT)",
			}
		}
		return nil
	}

	var tips []string
	for _, line := range strings.Split(sink.TroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "•") {
			continue
		}
		tips = append(tips, strings.TrimSpace(strings.TrimPrefix(line, "•")))
	}
	return tips
}

// --- Convenience functions for quick rendering ---

// RenderSuccess renders a success box with the given title and details
func RenderSuccess(title string, details ...Detail) string {
	return NewSuccessResult(title, details...).Render()
}

// RenderFailure renders a failure box with the given title, error, and troubleshooting tips
func RenderFailure(title string, err error, troubleshooting []string) string {
	return NewFailureResult(title, err, troubleshooting).Render()
}

// RenderError renders a failure box with a title and tips derived from err
func RenderError(err error) string {
	return RenderFailure(FailureTitle(err), err, Troubleshooting(err))
}

// RenderWarning renders a warning box with the given title and details
func RenderWarning(title string, details ...Detail) string {
	return NewWarningResult(title, details...).Render()
}
