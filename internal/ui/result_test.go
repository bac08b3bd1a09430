package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/muurk/ledbadge/internal/dispatch"
	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/sink"
)

func TestRenderSuccess(t *testing.T) {
	out := NewSuccessResult(`Displayed "HELLO" (left, speed 4) on desk`,
		Detail{Key: "Device", Value: "desk"},
		Detail{Key: "Latency", Value: "12ms"},
	).SetWidth(80).Render()

	for _, want := range []string{"SUCCESS", `Displayed "HELLO"`, "Device:", "Latency:", "12ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Device:") > strings.Index(out, "Latency:") {
		t.Error("details rendered out of order")
	}
}

func TestResultBoxPadding(t *testing.T) {
	out := NewSuccessResult("Sent", Detail{Key: "Device", Value: "desk"}).SetWidth(80).Render()

	pad := "║" + strings.Repeat(" ", DefaultPadding) + "   Device:"
	if !strings.Contains(out, pad) {
		t.Errorf("detail line should sit %d columns inside the border:\n%s", DefaultPadding, out)
	}
}

func TestFailureTitle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", display.UnknownMode("spin"), "Invalid request (UnknownMode)"},
		{"timeout", &dispatch.Error{Kind: dispatch.KindTimeout}, "Display did not respond"},
		{"unsupported", &dispatch.Error{Kind: dispatch.KindUnsupported}, "Not supported by this display"},
		{"sink failure", &dispatch.Error{Kind: dispatch.KindSinkFailure, Err: errors.New("x")}, "Display error"},
		{"other", errors.New("x"), "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureTitle(tt.err); got != tt.want {
				t.Errorf("FailureTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTroubleshooting(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		contain string
	}{
		{"unknown mode", display.UnknownMode("spin"), "left, right, up"},
		{"speed", display.SpeedOutOfRange(9), "0 to 7"},
		{"too long", display.TextTooLong(300, 255), "set-messages"},
		{
			name: "sink timeout",
			err: &dispatch.Error{Kind: dispatch.KindTimeout, Err: &sink.Error{
				Type: sink.ErrTypeTimeout, Message: "no ack", Device: "desk",
			}},
			contain: "powered on",
		},
		{"bare timeout", &dispatch.Error{Kind: dispatch.KindTimeout}, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips := Troubleshooting(tt.err)
			if !strings.Contains(strings.Join(tips, "\n"), tt.contain) {
				t.Errorf("Troubleshooting() = %q, want mention of %q", tips, tt.contain)
			}
			for _, tip := range tips {
				if strings.HasPrefix(tip, "•") {
					t.Errorf("tip %q kept its bullet", tip)
				}
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	out := RenderError(display.SpeedOutOfRange(9))
	for _, want := range []string{"FAILED", "SpeedOutOfRange", "Troubleshooting:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTable(t *testing.T) {
	out := NewTable("NAME", "SINK").
		AddRow("desk", "serial").
		AddRow("shopfront-window", "websocket").
		Render()

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	col := strings.Index(lines[0], "SINK")
	if strings.Index(lines[1], "serial") != col || strings.Index(lines[2], "websocket") != col {
		t.Errorf("columns not aligned:\n%s", out)
	}

	if empty := NewTable("NAME").Render(); !strings.Contains(empty, "(none)") {
		t.Errorf("empty table = %q", empty)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"delete\n", true},
		{"  delete  \n", true},
		{"yes\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		got := Confirm(strings.NewReader(tt.input), &out, "DELETE MESSAGE", []string{"gone for good"}, "delete")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
