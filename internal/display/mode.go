package display

import "fmt"

// Mode is the animation style applied by the display.
type Mode uint8

// Modes in wire order. The numeric values are what the device expects.
const (
	ModeLeft Mode = iota
	ModeRight
	ModeUp
	ModeDown
	ModeCenter
	ModeFast
	ModeDrop
	ModeCurtain
	ModeLaser

	modeCount
)

var modeNames = [modeCount]string{
	ModeLeft:    "left",
	ModeRight:   "right",
	ModeUp:      "up",
	ModeDown:    "down",
	ModeCenter:  "center",
	ModeFast:    "fast",
	ModeDrop:    "drop",
	ModeCurtain: "curtain",
	ModeLaser:   "laser",
}

// ParseMode maps an exact mode token to its Mode.
// The second return value is false for anything not in the closed set.
func ParseMode(token string) (Mode, bool) {
	for i, name := range modeNames {
		if name == token {
			return Mode(i), true
		}
	}
	return 0, false
}

// ModeNames returns the accepted mode tokens in wire order.
func ModeNames() []string {
	names := make([]string, len(modeNames))
	copy(names, modeNames[:])
	return names
}

// Valid reports whether m is one of the nine defined modes.
func (m Mode) Valid() bool {
	return m < modeCount
}

// String returns the mode token.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modeNames[m]
}
