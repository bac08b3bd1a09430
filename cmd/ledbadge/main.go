// Ledbadge sends text to LED name badges and scrolling character displays.
//
// It validates each message (mode, speed, text length and charset) before
// anything reaches the display, then writes it to the selected device:
// a badge on a USB serial port, a network display bridge over WebSocket,
// or a preview in the terminal.
//
// Usage:
//
//	ledbadge set-text "HELLO" --speed 4 --mode left
//	ledbadge set-messages left:3:OPEN laser:6:SALE
//	ledbadge library save greeting "WELCOME" --speed 2 --mode curtain
//	ledbadge devices
//	ledbadge serve --listen :8080 --advertise
//
// See 'ledbadge --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Failures already shown in a result box only set the exit code
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
