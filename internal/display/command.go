package display

import (
	"fmt"
	"strings"
)

// MaxProgramLength is the number of message slots on the badge.
const MaxProgramLength = 8

// Command is a validated, immutable display request.
//
// Commands are only produced by a Validator. The zero value is not a valid
// command and must never be dispatched.
type Command struct {
	text    string
	speed   Speed
	mode    Mode
	effects Effects
	valid   bool
}

// Text returns the text to display. It may be empty.
func (c Command) Text() string { return c.text }

// Speed returns the speed tier.
func (c Command) Speed() Speed { return c.speed }

// Mode returns the animation mode.
func (c Command) Mode() Mode { return c.mode }

// Effects returns the requested effects.
func (c Command) Effects() Effects { return c.effects }

// Valid reports whether c was produced by successful validation.
func (c Command) Valid() bool { return c.valid }

// String returns a compact description such as `left@4 "HELLO"`.
func (c Command) String() string {
	if !c.valid {
		return "Command(invalid)"
	}
	s := fmt.Sprintf("%s@%d %q", c.mode, c.speed, c.text)
	if c.effects != 0 {
		s += " [" + c.effects.String() + "]"
	}
	return s
}

// Program is an ordered set of commands sent to the display as one payload.
type Program struct {
	commands []Command
}

// Len returns the number of commands.
func (p Program) Len() int { return len(p.commands) }

// At returns the i-th command.
func (p Program) At(i int) Command { return p.commands[i] }

// Commands returns a copy of the commands.
func (p Program) Commands() []Command {
	out := make([]Command, len(p.commands))
	copy(out, p.commands)
	return out
}

// Valid reports whether p holds 1 to MaxProgramLength validated commands.
func (p Program) Valid() bool {
	if len(p.commands) == 0 || len(p.commands) > MaxProgramLength {
		return false
	}
	for _, c := range p.commands {
		if !c.valid {
			return false
		}
	}
	return true
}

// String lists the commands separated by " | ".
func (p Program) String() string {
	parts := make([]string, len(p.commands))
	for i, c := range p.commands {
		parts[i] = c.String()
	}
	return strings.Join(parts, " | ")
}

// ProgramOf groups already-validated commands into a Program.
// Sinks use it to send a single Command through a program-shaped wire format.
func ProgramOf(cmds ...Command) Program {
	out := make([]Command, len(cmds))
	copy(out, cmds)
	return Program{commands: out}
}
