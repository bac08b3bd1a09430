package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/config"
	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/server"
)

// runCLI executes the root command against a config file in a temp dir
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"LEDBADGE_DEVICE", "LEDBADGE_LIBRARY", "LEDBADGE_TIMEOUT", "LEDBADGE_LOG_LEVEL", "LEDBADGE_AUTH_SECRET"} {
		t.Setenv(k, "")
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath, "--plain"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestParseMessageArg(t *testing.T) {
	tests := []struct {
		arg         string
		wantText    string
		wantMode    string
		wantEffects string
		wantErr     bool
	}{
		{"left:3:OPEN", "OPEN", "left", "", false},
		{"laser:6:TIME 12:30", "TIME 12:30", "laser", "", false},
		{"drop:0:", "", "drop", "", false},
		{"left+flashing:3:SALE", "SALE", "left", "flashing", false},
		{"curtain+flashing+border:2:A:B", "A:B", "curtain", "flashing,border", false},
		{"left:3", "", "", "", true},
		{"left:fast:HI", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			req, err := parseMessageArg(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMessageArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if *req.Text != tt.wantText || *req.Mode != tt.wantMode {
				t.Errorf("parseMessageArg() = %q/%q, want %q/%q", *req.Text, *req.Mode, tt.wantText, tt.wantMode)
			}
			if got := strings.Join(req.Effects, ","); got != tt.wantEffects {
				t.Errorf("Effects = %q, want %q", got, tt.wantEffects)
			}
		})
	}
}

func TestCollectMessagesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	content := `messages:
  - text: OPEN
    speed: 3
    mode: left
  - text: SALE
    speed: 6
    mode: laser
    effects: [flashing, border]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	reqs, err := collectMessages(path, []string{"drop:1:BYE"})
	if err != nil {
		t.Fatalf("collectMessages() error = %v", err)
	}
	if len(reqs) != 3 {
		t.Fatalf("got %d messages, want 3", len(reqs))
	}

	prog, err := display.NewValidator().ValidateProgram(reqs)
	if err != nil {
		t.Fatalf("ValidateProgram() error = %v", err)
	}
	cmds := prog.Commands()
	if cmds[1].Mode() != display.ModeLaser || !cmds[1].Effects().Has(display.EffectFlashing) {
		t.Errorf("second message = %v", cmds[1])
	}
	if cmds[2].Text() != "BYE" {
		t.Errorf("third message = %v", cmds[2])
	}

	if _, err := collectMessages(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSetTextPreview(t *testing.T) {
	out, err := runCLI(t, tempConfig(t), "set-text", "HELLO", "--speed", "4", "--mode", "left")
	if err != nil {
		t.Fatalf("set-text error = %v\n%s", err, out)
	}
	if !strings.Contains(out, `Displayed "HELLO" (left, speed 4) on console`) {
		t.Errorf("output missing acknowledgement:\n%s", out)
	}
	if !strings.Contains(out, "[1] left, speed 4") {
		t.Errorf("output missing preview:\n%s", out)
	}
}

func TestSetTextRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		kind display.ErrorKind
	}{
		{"mode", []string{"HELLO", "-s", "4", "-m", "sideways"}, display.ErrUnknownMode},
		{"speed", []string{"HELLO", "-s", "8", "-m", "left"}, display.ErrSpeedOutOfRange},
		{"fraction", []string{"HELLO", "-s", "2.5", "-m", "left"}, display.ErrSpeedOutOfRange},
		{"max text", []string{"HELLO", "-s", "1", "-m", "left", "--max-text", "3"}, display.ErrTextTooLong},
		{"effect", []string{"HELLO", "-s", "1", "-m", "left", "-e", "sparkle"}, display.ErrUnknownEffect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tempConfig(t), append([]string{"set-text"}, tt.args...)...)
			if !display.IsKind(err, tt.kind) {
				t.Fatalf("error = %v, want %v", err, tt.kind)
			}
			if strings.Contains(out, "[1]") {
				t.Errorf("invalid message reached the display:\n%s", out)
			}
		})
	}
}

func TestSetTextRequiresSpeedAndMode(t *testing.T) {
	if _, err := runCLI(t, tempConfig(t), "set-text", "HELLO", "--mode", "left"); err == nil {
		t.Error("expected error without --speed")
	}
}

func TestSetMessages(t *testing.T) {
	out, err := runCLI(t, tempConfig(t), "set-messages", "left:3:OPEN", "laser:6:SALE")
	if err != nil {
		t.Fatalf("set-messages error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Displayed 2 messages on console") {
		t.Errorf("output:\n%s", out)
	}

	out, err = runCLI(t, tempConfig(t), "set-messages", "left:3:OPEN", "spin:6:SALE")
	if !display.IsKind(err, display.ErrUnknownMode) {
		t.Fatalf("error = %v, want UnknownMode", err)
	}
	if strings.Contains(out, "OPEN") {
		t.Errorf("valid message was sent alongside an invalid one:\n%s", out)
	}

	_, err = runCLI(t, tempConfig(t), "set-messages", "left+flashing:3:OPEN", "left+sparkle:3:SALE")
	if !display.IsKind(err, display.ErrUnknownEffect) {
		t.Errorf("error = %v, want UnknownEffect", err)
	}
}

func TestDryRunKeepsBadgeLimits(t *testing.T) {
	out, err := runCLI(t, tempConfig(t), "--device", "/dev/ttyUSB9", "--dry-run",
		"set-text", "Preis: 5€", "-s", "3", "-m", "left")
	if !display.IsKind(err, display.ErrUnsupportedCharacter) {
		t.Fatalf("error = %v, want UnsupportedCharacter\n%s", err, out)
	}

	out, err = runCLI(t, tempConfig(t), "--device", "/dev/ttyUSB9", "--dry-run",
		"set-text", "Grüße", "-s", "3", "-m", "left")
	if err != nil {
		t.Fatalf("dry run error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "(dry run)") {
		t.Errorf("output:\n%s", out)
	}
}

func TestLibraryFlow(t *testing.T) {
	cfg := tempConfig(t)

	if out, err := runCLI(t, cfg, "library", "save", "welcome", "WELCOME", "-s", "2", "-m", "curtain", "-e", "border"); err != nil {
		t.Fatalf("save error = %v\n%s", err, out)
	}
	if _, err := runCLI(t, cfg, "library", "save", "bad", "X", "-s", "9", "-m", "left"); !display.IsKind(err, display.ErrSpeedOutOfRange) {
		t.Errorf("save invalid error = %v", err)
	}

	out, err := runCLI(t, cfg, "library", "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "welcome") || strings.Contains(out, "bad") {
		t.Errorf("list output:\n%s", out)
	}

	out, err = runCLI(t, cfg, "library", "play", "welcome")
	if err != nil {
		t.Fatalf("play error = %v\n%s", err, out)
	}
	if !strings.Contains(out, `Displayed "WELCOME" (curtain, speed 2)`) {
		t.Errorf("play output:\n%s", out)
	}

	if _, err := runCLI(t, cfg, "library", "play", "missing"); err == nil {
		t.Error("expected error playing a missing message")
	}

	if _, err := runCLI(t, cfg, "library", "delete", "welcome", "--yes"); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if _, err := runCLI(t, cfg, "library", "show", "welcome"); err == nil {
		t.Error("expected error showing a deleted message")
	}
}

func TestDevicesAddAndDefault(t *testing.T) {
	cfg := tempConfig(t)

	if _, err := runCLI(t, cfg, "devices", "add", "desk", "--sink", "console", "--max-text-length", "5", "--default"); err != nil {
		t.Fatalf("add error = %v", err)
	}
	if _, err := runCLI(t, cfg, "devices", "add", "broken", "--sink", "serial"); err == nil {
		t.Error("expected error for serial profile without address")
	}

	reg, err := config.LoadRegistryFrom(cfg)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Preferences.DefaultDevice != "desk" || reg.GetDevice("desk").MaxTextLength != 5 {
		t.Fatalf("registry = %+v", reg)
	}

	// The default device's limit applies
	if _, err := runCLI(t, cfg, "set-text", "TOO LONG", "-s", "1", "-m", "left"); !display.IsKind(err, display.ErrTextTooLong) {
		t.Errorf("set-text error = %v, want TextTooLong", err)
	}

	out, err := runCLI(t, cfg, "devices", "--no-scan")
	if err != nil {
		t.Fatalf("devices error = %v", err)
	}
	if !strings.Contains(out, "desk") {
		t.Errorf("devices output:\n%s", out)
	}

	if _, err := runCLI(t, cfg, "devices", "default", "nope"); err == nil {
		t.Error("expected error for unknown default")
	}
	if _, err := runCLI(t, cfg, "devices", "remove", "desk"); err != nil {
		t.Fatalf("remove error = %v", err)
	}
	reg, _ = config.LoadRegistryFrom(cfg)
	if reg.GetDevice("desk") != nil || reg.Preferences.DefaultDevice != "" {
		t.Errorf("desk should be gone: %+v", reg)
	}
}

func TestTokenCommand(t *testing.T) {
	out, err := runCLI(t, tempConfig(t), "token", "--auth-secret", "s3cret", "--subject", "kiosk")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}

	v, err := server.NewVerifier("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	subject, err := v.VerifyToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if subject != "kiosk" {
		t.Errorf("subject = %q, want kiosk", subject)
	}

	if _, err := runCLI(t, tempConfig(t), "token"); err == nil {
		t.Error("expected error without a secret")
	}
	if _, err := runCLI(t, tempConfig(t), "token", "--auth-secret", "s3cret", "--ttl", "-1h"); err == nil {
		t.Error("expected error for a negative ttl")
	}
}

func TestDeviceRef(t *testing.T) {
	tests := []struct {
		device badge.Device
		want   string
	}{
		{badge.Device{Name: "desk", Source: "config", Address: "/dev/ttyUSB0"}, "desk"},
		{badge.Device{Name: "shopfront", Source: "mdns", Address: "ws://10.0.0.5:8080/bridge"}, "ws://10.0.0.5:8080/bridge"},
		{badge.Device{Name: "/dev/ttyACM0", Source: "serial", Address: "/dev/ttyACM0"}, "/dev/ttyACM0"},
	}
	for _, tt := range tests {
		if got := deviceRef(tt.device); got != tt.want {
			t.Errorf("deviceRef(%s) = %q, want %q", tt.device.Name, got, tt.want)
		}
	}
}

func TestComposeNeedsTerminal(t *testing.T) {
	if _, err := runCLI(t, tempConfig(t), "compose"); err == nil {
		t.Error("compose should refuse to run without a terminal")
	}
}

func TestConfigPathFromEnv(t *testing.T) {
	cfg := tempConfig(t)
	t.Setenv(config.ConfigPathEnvVar, cfg)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--plain", "init"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init error = %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), cfg) {
		t.Errorf("init wrote elsewhere:\n%s", out.String())
	}
	if _, err := os.Stat(cfg); err != nil {
		t.Fatalf("config not written to LEDBADGE_CONFIG path: %v", err)
	}
}

func TestInitWritesConfig(t *testing.T) {
	cfg := tempConfig(t)
	if _, err := runCLI(t, cfg, "init"); err != nil {
		t.Fatalf("init error = %v", err)
	}
	if _, err := os.Stat(cfg); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := runCLI(t, cfg, "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := runCLI(t, cfg, "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}
