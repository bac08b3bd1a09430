package display

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind identifies which input constraint a request violated.
type ErrorKind int

const (
	// ErrUnknownMode indicates a mode token outside the closed set
	ErrUnknownMode ErrorKind = iota
	// ErrSpeedOutOfRange indicates a non-integral speed or one outside 0-7
	ErrSpeedOutOfRange
	// ErrTextTooLong indicates text longer than the configured maximum
	ErrTextTooLong
	// ErrUnsupportedCharacter indicates a rune the display charset cannot show
	ErrUnsupportedCharacter
	// ErrUnknownEffect indicates an effect token outside the closed set
	ErrUnknownEffect
	// ErrMissingField indicates a required request field was absent
	ErrMissingField
	// ErrEmptyProgram indicates a program with no messages
	ErrEmptyProgram
	// ErrProgramTooLong indicates more messages than the display can hold
	ErrProgramTooLong
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownMode:
		return "UnknownMode"
	case ErrSpeedOutOfRange:
		return "SpeedOutOfRange"
	case ErrTextTooLong:
		return "TextTooLong"
	case ErrUnsupportedCharacter:
		return "UnsupportedCharacter"
	case ErrUnknownEffect:
		return "UnknownEffect"
	case ErrMissingField:
		return "MissingField"
	case ErrEmptyProgram:
		return "EmptyProgram"
	case ErrProgramTooLong:
		return "ProgramTooLong"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ValidationError is returned when caller input fails a constraint.
// Only the fields relevant to Kind are populated.
type ValidationError struct {
	Kind ErrorKind

	Mode    string  // ErrUnknownMode: the rejected token
	Speed   float64 // ErrSpeedOutOfRange: the rejected value
	Length  int     // ErrTextTooLong, ErrProgramTooLong: the actual size
	Max     int     // ErrTextTooLong, ErrProgramTooLong: the limit
	Rune    rune    // ErrUnsupportedCharacter: the offending rune
	Index   int     // ErrUnsupportedCharacter: character position in text
	Charset string  // ErrUnsupportedCharacter: charset name
	Effect  string  // ErrUnknownEffect: the rejected token
	Field   string  // ErrMissingField: the absent field
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrUnknownMode:
		return fmt.Sprintf("unknown mode %q (want one of %s)", e.Mode, strings.Join(ModeNames(), ", "))
	case ErrSpeedOutOfRange:
		return fmt.Sprintf("speed out of range: %s (want an integer %d-%d)",
			strconv.FormatFloat(e.Speed, 'g', -1, 64), MinSpeed, MaxSpeed)
	case ErrTextTooLong:
		return fmt.Sprintf("text too long: %d characters (max %d)", e.Length, e.Max)
	case ErrUnsupportedCharacter:
		return fmt.Sprintf("unsupported character %q (%U) at position %d for charset %s",
			e.Rune, e.Rune, e.Index, e.Charset)
	case ErrUnknownEffect:
		return fmt.Sprintf("unknown effect %q (want one of %s)", e.Effect, strings.Join(EffectNames(), ", "))
	case ErrMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case ErrEmptyProgram:
		return "program has no messages"
	case ErrProgramTooLong:
		return fmt.Sprintf("program has %d messages (max %d)", e.Length, e.Max)
	default:
		return e.Kind.String()
	}
}

// UnknownMode builds an ErrUnknownMode error.
func UnknownMode(mode string) *ValidationError {
	return &ValidationError{Kind: ErrUnknownMode, Mode: mode}
}

// SpeedOutOfRange builds an ErrSpeedOutOfRange error.
func SpeedOutOfRange(speed float64) *ValidationError {
	return &ValidationError{Kind: ErrSpeedOutOfRange, Speed: speed}
}

// TextTooLong builds an ErrTextTooLong error.
func TextTooLong(length, max int) *ValidationError {
	return &ValidationError{Kind: ErrTextTooLong, Length: length, Max: max}
}

func unsupportedCharacter(r rune, index int, charset string) *ValidationError {
	return &ValidationError{Kind: ErrUnsupportedCharacter, Rune: r, Index: index, Charset: charset}
}

func unknownEffect(token string) *ValidationError {
	return &ValidationError{Kind: ErrUnknownEffect, Effect: token}
}

func missingField(field string) *ValidationError {
	return &ValidationError{Kind: ErrMissingField, Field: field}
}

// KindOf returns the ErrorKind of the first ValidationError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return 0, false
}

// IsKind checks if err carries a ValidationError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
