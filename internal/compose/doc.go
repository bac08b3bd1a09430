// Package compose implements the interactive message composer behind
// 'ledbadge compose'.
//
// The composer is a full-screen Bubble Tea program following the Elm
// architecture: every screen is a value model with Init, Update and View,
// and the top-level AppModel routes messages to the active screen.
//
// # Screens
//
//  1. Devices: lists configured profiles, bridges found over mDNS and
//     serial ports while a spinner runs, then lets the user pick one
//     (skipped when a device was given on the command line)
//  2. Editor: a text field plus mode, speed and effect controls. The
//     message is validated on every keystroke against the selected
//     display's limits and the current error is shown under the field.
//     Enter sends only a valid message.
//  3. Result: the acknowledgement, or the failure with troubleshooting
//     hints. Enter returns to the editor with the message kept.
//
// # Framework Components
//
//   - bubbles/spinner: scan and send indicators
//   - bubbles/textinput: message text, capped at the display's limit
//   - bubbles/list: device selection with filtering
//   - bubbles/help and bubbles/key: per-screen key bindings
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	app := compose.NewAppModel(compose.Options{
//	    List: listDevices,
//	    Open: openDevice,
//	})
//	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Device discovery and sink setup are injected through Options so the
// models can be driven directly in tests without a terminal.
package compose
