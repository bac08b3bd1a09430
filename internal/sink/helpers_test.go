package sink

import (
	"testing"

	"github.com/muurk/ledbadge/internal/display"
)

func mustCommand(t *testing.T, text string, speed float64, mode string, effects ...string) display.Command {
	t.Helper()
	cmd, err := display.NewValidator().ValidateWithEffects(text, speed, mode, effects)
	if err != nil {
		t.Fatalf("ValidateWithEffects(%q, %v, %q) error = %v", text, speed, mode, err)
	}
	return cmd
}
