// Package display defines the validated command model for an LED badge or
// scrolling character display, and the Validator that produces it.
//
// Raw caller input (text, a loosely-typed numeric speed, and a mode token
// picked from a UI dropdown) is checked once, at the boundary, and turned
// into an immutable Command. Nothing downstream of the Validator compares
// strings or checks ranges again.
//
// # Modes
//
// The display supports nine animation modes, in wire order:
//
//	left, right, up, down, center, fast, drop, curtain, laser
//
// Tokens are matched exactly and case-sensitively. There is no default mode.
//
// # Speed
//
// Speed is a discrete device tier from 0 (slowest) to 7 (fastest). Values
// outside the range, and non-integral values such as 2.5, are rejected
// instead of clamped.
//
// # Usage Example
//
//	v := display.NewValidator()
//	v.MaxTextLength = 255
//	v.Charset = display.Latin1
//
//	cmd, err := v.Validate("HELLO", 4, "left")
//	if err != nil {
//	    var verr *display.ValidationError
//	    if errors.As(err, &verr) && verr.Kind == display.ErrSpeedOutOfRange {
//	        // caller should correct the speed and resubmit
//	    }
//	    return err
//	}
//	fmt.Println(cmd) // left@4 "HELLO"
//
// # Thread Safety
//
// A Validator is never mutated by Validate and may be shared between
// goroutines once configured. Command and Program values are immutable.
package display
