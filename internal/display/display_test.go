package display

import (
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		token string
		want  Mode
		ok    bool
	}{
		{"left", ModeLeft, true},
		{"right", ModeRight, true},
		{"up", ModeUp, true},
		{"down", ModeDown, true},
		{"center", ModeCenter, true},
		{"fast", ModeFast, true},
		{"drop", ModeDrop, true},
		{"curtain", ModeCurtain, true},
		{"laser", ModeLaser, true},
		{"Laser", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseMode(tt.token)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseMode(%q) = (%v, %v), want (%v, %v)", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeCurtain.String() != "curtain" {
		t.Errorf("ModeCurtain.String() = %q", ModeCurtain.String())
	}
	if Mode(42).Valid() {
		t.Error("Mode(42) should not be valid")
	}
	if !strings.HasPrefix(Mode(42).String(), "Mode(") {
		t.Errorf("Mode(42).String() = %q", Mode(42).String())
	}
	if len(ModeNames()) != 9 {
		t.Errorf("len(ModeNames()) = %d, want 9", len(ModeNames()))
	}
}

func TestEffectsString(t *testing.T) {
	tests := []struct {
		fx   Effects
		want string
	}{
		{0, "none"},
		{EffectFlashing, "flashing"},
		{EffectInverted | EffectFlashing, "flashing+inverted"},
		{EffectFlashing | EffectBorder | EffectInverted, "flashing+border+inverted"},
	}
	for _, tt := range tests {
		if got := tt.fx.String(); got != tt.want {
			t.Errorf("Effects(%d).String() = %q, want %q", tt.fx, got, tt.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	cmd, err := NewValidator().ValidateWithEffects("HELLO", 4, "left", []string{"border"})
	if err != nil {
		t.Fatal(err)
	}
	if got := cmd.String(); got != `left@4 "HELLO" [border]` {
		t.Errorf("String() = %q", got)
	}
	if got := (Command{}).String(); got != "Command(invalid)" {
		t.Errorf("zero String() = %q", got)
	}
}

func TestValidationErrorMessages(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{UnknownMode("bounce"), `unknown mode "bounce"`},
		{SpeedOutOfRange(9), "speed out of range: 9 (want an integer 0-7)"},
		{SpeedOutOfRange(2.5), "speed out of range: 2.5"},
		{TextTooLong(300, 255), "text too long: 300 characters (max 255)"},
		{missingField("speed"), `missing required field "speed"`},
		{unknownEffect("sparkle"), `unknown effect "sparkle"`},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("Error() = %q, should contain %q", tt.err.Error(), tt.want)
		}
	}
}

func TestCharsetByName(t *testing.T) {
	cs, err := CharsetByName("latin1")
	if err != nil || cs != Latin1 {
		t.Errorf("CharsetByName(latin1) = %v, %v", cs, err)
	}
	cs, err = CharsetByName("")
	if err != nil || cs != nil {
		t.Errorf("CharsetByName(\"\") = %v, %v, want nil, nil", cs, err)
	}
	if _, err := CharsetByName("ebcdic"); err == nil {
		t.Error("CharsetByName(ebcdic) should fail")
	}
}

func TestEncodeText(t *testing.T) {
	b, err := EncodeText(Latin1, "Grüß")
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{'G', 'r', 0xFC, 0xDF}
	if string(b) != string(want) {
		t.Errorf("EncodeText(Latin1) = % x, want % x", b, want)
	}

	if _, err := EncodeText(ASCII, "ü"); err == nil {
		t.Error("EncodeText(ASCII, ü) should fail")
	}

	b, err = EncodeText(nil, "☃")
	if err != nil || string(b) != "☃" {
		t.Errorf("EncodeText(nil) = %q, %v", b, err)
	}
}
