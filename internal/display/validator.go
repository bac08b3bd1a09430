package display

import (
	"fmt"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Validator checks raw requests and produces Commands.
type Validator struct {
	// MaxTextLength is the maximum number of characters (grapheme clusters).
	// Zero means unbounded.
	MaxTextLength int

	// Charset restricts the characters the display can render.
	// Nil accepts any valid UTF-8.
	Charset Charset

	// MaxProgramLength caps ValidateProgram. Zero means MaxProgramLength.
	MaxProgramLength int
}

// NewValidator returns a Validator with no text limit and no charset.
func NewValidator() *Validator {
	return &Validator{}
}

// Request is the loosely-typed input of one display message.
// Pointer fields distinguish an absent field from a zero value.
type Request struct {
	Text    *string  `json:"text" yaml:"text"`
	Speed   *float64 `json:"speed" yaml:"speed"`
	Mode    *string  `json:"mode" yaml:"mode"`
	Effects []string `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// NewRequest builds a Request with every field present.
func NewRequest(text string, speed float64, mode string, effects ...string) Request {
	return Request{Text: &text, Speed: &speed, Mode: &mode, Effects: effects}
}

// Validate checks text, speed and mode and returns the normalized Command.
// Checks run in a fixed order (mode, speed, text) so the reported error is
// reproducible.
func (v *Validator) Validate(text string, speed float64, mode string) (Command, error) {
	return v.ValidateWithEffects(text, speed, mode, nil)
}

// ValidateWithEffects is Validate plus an effect list.
func (v *Validator) ValidateWithEffects(text string, speed float64, mode string, effects []string) (Command, error) {
	m, ok := ParseMode(mode)
	if !ok {
		return Command{}, UnknownMode(mode)
	}

	s, ok := parseSpeed(speed)
	if !ok {
		return Command{}, SpeedOutOfRange(speed)
	}

	if err := v.checkText(text); err != nil {
		return Command{}, err
	}

	fx, err := parseEffects(effects)
	if err != nil {
		return Command{}, err
	}

	return Command{text: text, speed: s, mode: m, effects: fx, valid: true}, nil
}

// ValidateRequest validates a Request, rejecting absent fields.
func (v *Validator) ValidateRequest(req Request) (Command, error) {
	if req.Mode == nil {
		return Command{}, missingField("mode")
	}
	if req.Speed == nil {
		return Command{}, missingField("speed")
	}
	if req.Text == nil {
		return Command{}, missingField("text")
	}
	return v.ValidateWithEffects(*req.Text, *req.Speed, *req.Mode, req.Effects)
}

// ValidateProgram validates every request before returning a Program.
// The first failing entry is reported as "message N: ..." wrapping its
// ValidationError.
func (v *Validator) ValidateProgram(reqs []Request) (Program, error) {
	if len(reqs) == 0 {
		return Program{}, &ValidationError{Kind: ErrEmptyProgram}
	}
	limit := MaxProgramLength
	if v != nil && v.MaxProgramLength > 0 {
		limit = v.MaxProgramLength
	}
	if len(reqs) > limit {
		return Program{}, &ValidationError{Kind: ErrProgramTooLong, Length: len(reqs), Max: limit}
	}

	cmds := make([]Command, 0, len(reqs))
	for i, req := range reqs {
		cmd, err := v.ValidateRequest(req)
		if err != nil {
			return Program{}, fmt.Errorf("message %d: %w", i+1, err)
		}
		cmds = append(cmds, cmd)
	}
	return Program{commands: cmds}, nil
}

// Limit returns the effective maximum text length (0 = unbounded).
func (v *Validator) Limit() int {
	if v == nil {
		return 0
	}
	return v.MaxTextLength
}

func (v *Validator) checkText(text string) error {
	if max := v.Limit(); max > 0 {
		if n := uniseg.GraphemeClusterCount(text); n > max {
			return TextTooLong(n, max)
		}
	}

	var cs Charset
	if v != nil {
		cs = v.Charset
	}

	index := 0
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size <= 1 {
				return unsupportedCharacter(r, index, "UTF-8")
			}
		}
		if cs != nil && !cs.Contains(r) {
			return unsupportedCharacter(r, index, cs.Name())
		}
		index++
	}
	return nil
}

func parseEffects(tokens []string) (Effects, error) {
	var fx Effects
	for _, token := range tokens {
		e, ok := ParseEffect(token)
		if !ok {
			return 0, unknownEffect(token)
		}
		fx |= e
	}
	return fx, nil
}
