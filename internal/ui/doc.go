// Package ui renders ledbadge command results in the terminal.
//
// Components follow a "print once and exit" pattern. They style output
// with Lipgloss but never wait for input, except Confirm.
//
//   - Header: banner for long-running commands such as serve
//   - Result: success, warning and failure boxes
//   - Table: aligned lists of devices and saved messages
//   - Confirm: typed confirmation before destructive operations
//
// RenderError picks a title and troubleshooting tips from the class of a
// set_text failure: validation errors list the accepted values, sink errors
// reuse sink.TroubleshootingHint.
//
// # Logging Integration
//
// Zap logging is silent unless LEDBADGE_LOG_LEVEL is set, so these boxes
// are the only output by default.
package ui
